package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeServiceClassDefaultsToFileTransfer(t *testing.T) {
	assert.Equal(t, ServiceClassFileTransfer, normalizeServiceClass(0x9999))
	assert.Equal(t, ServiceClassObjectPush, normalizeServiceClass(ServiceClassObjectPush))
	assert.Equal(t, ServiceClassIrMCSync, normalizeServiceClass(ServiceClassIrMCSync))
}

func TestExpand16MatchesBluetoothBaseUUID(t *testing.T) {
	got := expand16(ServiceClassFileTransfer)
	assert.Equal(t, "00001106-0000-1000-8000-00805f9b34fb", got.String())
}

func TestPCSuiteUUIDLiteral(t *testing.T) {
	assert.Equal(t, "00005005-0000-1000-8000-0002ee000001", pcSuiteUUID.String())
}
