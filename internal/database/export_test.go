package database

// DefaultManager exposes the process-wide Manager to tests.
func DefaultManager() *Manager {
	return defaultManager.Load()
}
