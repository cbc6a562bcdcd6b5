package berrors

import "wb-ha-bridge/internal/logger"

// Handler centralises error logging so every component reports failures
// the same way instead of calling the logger ad hoc.
type Handler struct {
	log logger.ILogger
}

// NewHandler creates a Handler bound to the given logger.
func NewHandler(log logger.ILogger) *Handler {
	return &Handler{log: log}
}

// Handle logs err at the severity carried by its concrete type, or at
// error severity for anything that isn't one of ours.
func (h *Handler) Handle(err error) {
	if err == nil {
		return
	}
	switch e := err.(type) {
	case *TransportError:
		h.logAt(e.Severity, e.Error())
	case *TopicParseError:
		h.logAt(e.Severity, e.Error())
	case *ConfigError:
		h.logAt(e.Severity, e.Error())
	case *BridgeError:
		h.logAt(e.Severity, e.Error())
	default:
		h.log.Error("%v", err)
	}
}

func (h *Handler) logAt(sev Severity, msg string) {
	switch sev {
	case SeverityCritical, SeverityError:
		h.log.Error("%s", msg)
	case SeverityWarning:
		h.log.Warn("%s", msg)
	default:
		h.log.Info("%s", msg)
	}
}
