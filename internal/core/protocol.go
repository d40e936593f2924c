package core

import "fmt"

// Protocol is a named set of handlers dispatched by Slot.Service when a
// spawn descriptor becomes ready. Any handler may be nil; the corresponding
// readiness condition is then ignored.
//
// Handlers run on the slot's servicing goroutine and must not block.
type Protocol struct {
	Name string

	// OnReadable fires when a stdout/stderr descriptor has data (or EOF)
	// to read. Level-triggered: it fires again on the next Service call if
	// the condition was not fully drained.
	OnReadable func(d *Descriptor)

	// OnWritable fires when the stdin descriptor can accept more data.
	OnWritable func(d *Descriptor)

	// OnHangUp fires when the peer end of the pipe has closed.
	OnHangUp func(d *Descriptor)
}

// RegisterProtocol adds p to the context's lookup table. The first protocol
// registered becomes the default used by spawns that name none.
func (c *Context) RegisterProtocol(p *Protocol) error {
	if p == nil || p.Name == "" {
		return fmt.Errorf("register protocol: name must not be empty")
	}
	if _, dup := c.byName[p.Name]; dup {
		return fmt.Errorf("register protocol %q: %w", p.Name, ErrProtocolExists)
	}
	c.protocols = append(c.protocols, p)
	c.byName[p.Name] = p
	return nil
}

// lookupProtocol resolves a spawn's protocol tag: an empty name selects the
// first registered protocol.
func (c *Context) lookupProtocol(name string) (*Protocol, error) {
	if name == "" {
		if len(c.protocols) == 0 {
			return nil, ErrNoProtocols
		}
		return c.protocols[0], nil
	}
	p, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
	}
	return p, nil
}
