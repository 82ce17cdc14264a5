package amf3

import (
	"log/slog"
	"sync"
)

// ExternalizableReader decodes the body of an externalizable object whose
// class name matched a registry entry. It is invoked after the trait and
// class name have already been read and the result slot registered; the
// reader is responsible for consuming exactly its object's body from d.
type ExternalizableReader func(d *Decoder) (any, error)

var (
	externalizableMu sync.RWMutex
	externalizables  = map[string]ExternalizableReader{}
)

// Register installs reader as the externalizable handler for className,
// process-wide. Registration is idempotent: registering the same name twice
// replaces the previous reader and logs at debug level rather than failing,
// since a host application restarting a subsystem may legitimately
// re-register its own classes.
func Register(className string, reader ExternalizableReader) {
	externalizableMu.Lock()
	defer externalizableMu.Unlock()
	if _, exists := externalizables[className]; exists {
		slog.Debug("amf3: re-registering externalizable class", "class", className)
	}
	externalizables[className] = reader
}

func lookupExternalizable(className string) (ExternalizableReader, bool) {
	externalizableMu.RLock()
	defer externalizableMu.RUnlock()
	r, ok := externalizables[className]
	return r, ok
}
