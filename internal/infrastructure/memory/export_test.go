package memory

// HeldLocks entradas vivas en las tablas de bloqueo de stock y de filas.
func (s *Store) HeldLocks() int {
	return s.stockLocks.len() + s.rowLocks.len()
}
