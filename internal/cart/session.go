package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexedwards/scs/v2"
)

const sessionKey = "cart"

// SessionStore loads and saves the cart at request boundaries. The request
// context must have passed through the session manager's LoadAndSave.
type SessionStore struct {
	sessions *scs.SessionManager
}

func NewSessionStore(sessions *scs.SessionManager) *SessionStore {
	return &SessionStore{sessions: sessions}
}

func (s *SessionStore) Load(ctx context.Context) (Cart, error) {
	b := s.sessions.GetBytes(ctx, sessionKey)
	if len(b) == 0 {
		return New(), nil
	}

	var c Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return New(), fmt.Errorf("decode session cart: %w", err)
	}
	return c, nil
}

func (s *SessionStore) Save(ctx context.Context, c Cart) error {
	if c.IsEmpty() {
		s.sessions.Remove(ctx, sessionKey)
		return nil
	}

	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode session cart: %w", err)
	}
	s.sessions.Put(ctx, sessionKey, b)
	return nil
}
