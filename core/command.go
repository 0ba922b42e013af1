package core

// CommandFunc handles one command. It decodes its own arguments from data.
type CommandFunc func(data *[]byte) error

// Command is one entry of the message table. Responses (firmware to host)
// have no handler.
type Command struct {
	ID      uint16
	Name    string
	Format  string // argument format for the dictionary, e.g. "signal=%c total=%u"
	Handler CommandFunc
}

// IsResponse reports whether c flows from firmware to host.
func (c *Command) IsResponse() bool {
	return c.Handler == nil
}

// Signature is the dictionary key: the name followed by the format.
func (c *Command) Signature() string {
	if c.Format == "" {
		return c.Name
	}
	return c.Name + " " + c.Format
}

// CommandRegistry maps message ids to commands. Ids are fixed so a host
// that skipped identify can still talk to the firmware. Entries are added
// during start-up only, so lookups take no lock.
type CommandRegistry struct {
	commands []Command // sorted by ID
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{}
}

// Register adds a command, or replaces the entry with the same id. A nil
// handler registers a response.
func (r *CommandRegistry) Register(id uint16, name, format string, handler CommandFunc) {
	cmd := Command{ID: id, Name: name, Format: format, Handler: handler}

	i := 0
	for i < len(r.commands) && r.commands[i].ID < id {
		i++
	}
	if i < len(r.commands) && r.commands[i].ID == id {
		r.commands[i] = cmd
		return
	}
	r.commands = append(r.commands, Command{})
	copy(r.commands[i+1:], r.commands[i:])
	r.commands[i] = cmd
}

// Lookup returns the entry for id.
func (r *CommandRegistry) Lookup(id uint16) (*Command, bool) {
	for i := range r.commands {
		if r.commands[i].ID == id {
			return &r.commands[i], true
		}
	}
	return nil, false
}

// Dispatch runs the handler for cmdID. It has the protocol.CommandHandler
// signature.
func (r *CommandRegistry) Dispatch(cmdID uint16, data *[]byte) error {
	cmd, ok := r.Lookup(cmdID)
	if !ok || cmd.IsResponse() {
		return ErrUnknownCommand
	}
	return cmd.Handler(data)
}

// Commands returns every entry in id order.
func (r *CommandRegistry) Commands() []Command {
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Count returns the number of registered entries.
func (r *CommandRegistry) Count() int {
	return len(r.commands)
}
