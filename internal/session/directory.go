// internal/session/directory.go
package session

// Directory maps authenticated identities to their live connection and each
// connection to at most one room. It is owned by the hub goroutine.
type Directory struct {
	identities map[*Conn]string
	conns      map[string]*Conn
	rooms      map[*Conn]string
}

func NewDirectory() *Directory {
	return &Directory{
		identities: make(map[*Conn]string),
		conns:      make(map[string]*Conn),
		rooms:      make(map[*Conn]string),
	}
}

// Authenticate binds c to identity. The caller is responsible for retiring
// any other connection previously holding identity.
func (d *Directory) Authenticate(c *Conn, identity string) {
	if prev, ok := d.identities[c]; ok && prev != identity && d.conns[prev] == c {
		delete(d.conns, prev)
	}
	d.identities[c] = identity
	d.conns[identity] = c
}

// Identity returns the identity c authenticated as.
func (d *Directory) Identity(c *Conn) (string, bool) {
	id, ok := d.identities[c]
	return id, ok
}

// Lookup returns the live connection for identity.
func (d *Directory) Lookup(identity string) (*Conn, bool) {
	c, ok := d.conns[identity]
	return c, ok
}

// ResolveRoom returns the room c is bound to.
func (d *Directory) ResolveRoom(c *Conn) (string, bool) {
	id, ok := d.rooms[c]
	return id, ok
}

func (d *Directory) Bind(c *Conn, roomID string) {
	d.rooms[c] = roomID
}

func (d *Directory) Unbind(c *Conn) {
	delete(d.rooms, c)
}

// Remove forgets c entirely.
func (d *Directory) Remove(c *Conn) {
	if id, ok := d.identities[c]; ok && d.conns[id] == c {
		delete(d.conns, id)
	}
	delete(d.identities, c)
	delete(d.rooms, c)
}

// Online returns the number of authenticated connections.
func (d *Directory) Online() int {
	return len(d.conns)
}
