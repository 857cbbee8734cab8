package memstore_test

import (
	"testing"

	"taskpad/internal/storage/memstore"
	"taskpad/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, memstore.New())
}
