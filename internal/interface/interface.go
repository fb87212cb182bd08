package interfaces

// Service is the transport-facing surface of the daemon.
type Service interface {
	Start() error
	Stop()
}
