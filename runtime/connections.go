package runtime

import (
	"sync"

	"github.com/Qwertuhh/leanaura-alpha/contract"
)

// ConnectionDirectory resolves a connection identity into its live delivery
// capability. Room membership deals only in identities; the directory is the
// single place a connection object is looked up.
type ConnectionDirectory struct {
	mu    sync.RWMutex
	conns map[string]contract.Connection
}

func NewConnectionDirectory() *ConnectionDirectory {
	return &ConnectionDirectory{
		conns: make(map[string]contract.Connection),
	}
}

func (d *ConnectionDirectory) Add(conn contract.Connection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns[conn.ID()] = conn
}

func (d *ConnectionDirectory) Remove(connectionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.conns, connectionID)
}

func (d *ConnectionDirectory) Get(connectionID string) (contract.Connection, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	conn, ok := d.conns[connectionID]
	return conn, ok
}
