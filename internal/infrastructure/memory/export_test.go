package memory

// LockCount expone el tamaño del mapa de bloqueos a los tests.
func (s *Store) LockCount() int { return s.lockCount() }
