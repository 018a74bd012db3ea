package sql

import "time"

// ========== Rate Limit Repository ==========
//
// Os contadores de limitação de taxa são voláteis e de janela curta; mantê-los
// no banco geraria escrita constante sem benefício. Aqui ficam em memória de
// processo; instalações com múltiplas réplicas devem usar o armazenamento
// híbrido, que delega os contadores ao Redis.

// IncrementRateLimit incrementa o contador da chave dentro da janela dada.
func (s *Store) IncrementRateLimit(key string, window time.Duration) (int64, error) {
	s.rlMu.Lock()
	defer s.rlMu.Unlock()

	now := time.Now()
	s.sweepRateLimits(now)

	entry, ok := s.rateLimits[key]
	if !ok || now.After(entry.ExpiresAt) {
		entry = &rateLimitEntry{ExpiresAt: now.Add(window)}
		s.rateLimits[key] = entry
	}
	entry.Count++
	return entry.Count, nil
}

// GetRateLimit devolve o contador atual da chave.
func (s *Store) GetRateLimit(key string) (int64, error) {
	s.rlMu.Lock()
	defer s.rlMu.Unlock()

	entry, ok := s.rateLimits[key]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return 0, nil
	}
	return entry.Count, nil
}

// sweepRateLimits descarta entradas expiradas; exige rlMu.
func (s *Store) sweepRateLimits(now time.Time) {
	if now.Sub(s.rlLastSweep) < s.rlSweepEvery {
		return
	}
	s.rlLastSweep = now
	for key, entry := range s.rateLimits {
		if now.After(entry.ExpiresAt) {
			delete(s.rateLimits, key)
		}
	}
}
