package discovery

import "github.com/google/uuid"

// bluetoothBaseUUID is the 128-bit base every 16- and 32-bit Bluetooth
// "short" UUID expands into: xxxxxxxx-0000-1000-8000-00805F9B34FB.
var bluetoothBaseUUID = uuid.MustParse("00000000-0000-1000-8000-00805F9B34FB")

// ServiceClass is a well-known 16-bit Bluetooth service class ID.
type ServiceClass uint16

// The service classes this client's SDP browse understands. Any other
// value passed in is coerced to ServiceClassFileTransfer, matching the
// original discovery code's fallback rule.
const (
	ServiceClassIrMCSync      ServiceClass = 0x1104
	ServiceClassObjectPush    ServiceClass = 0x1105
	ServiceClassFileTransfer  ServiceClass = 0x1106
)

// expand16 renders a 16-bit service class as its full 128-bit UUID, by
// substituting it into the top 32 bits of the Bluetooth base UUID.
func expand16(class ServiceClass) uuid.UUID {
	out := bluetoothBaseUUID
	out[0] = 0
	out[1] = 0
	out[2] = byte(class >> 8)
	out[3] = byte(class)
	return out
}

// normalizeServiceClass applies the "unknown class defaults to file
// transfer" rule from the original discovery code.
func normalizeServiceClass(class ServiceClass) ServiceClass {
	switch class {
	case ServiceClassIrMCSync, ServiceClassObjectPush, ServiceClassFileTransfer:
		return class
	default:
		return ServiceClassFileTransfer
	}
}

// pcSuiteUUID is the Nokia PC Suite proprietary service UUID
// (00005005-0000-1000-8000-0002ee000001). Series 60 devices expose file
// transfer under this UUID instead of, or in addition to, the well-known
// OBEX File Transfer class, and this client prefers it when present.
var pcSuiteUUID = uuid.MustParse("00005005-0000-1000-8000-0002ee000001")
