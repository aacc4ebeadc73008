package admin

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu         sync.Mutex
	configured bool
	rows       []Account

	insertErr error
	updateErr error
	deleteErr error

	onInsert func()
}

func newFakeRepo(rows ...Account) *fakeRepo {
	return &fakeRepo{configured: true, rows: rows}
}

func (f *fakeRepo) Configured() bool { return f.configured }

func (f *fakeRepo) List(context.Context) ([]Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Account(nil), f.rows...), nil
}

func (f *fakeRepo) Insert(_ context.Context, a Account) (Account, error) {
	if f.onInsert != nil {
		f.onInsert()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return Account{}, f.insertErr
	}
	a.ID = uuid.New()
	f.rows = append(f.rows, a)
	return a, nil
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (f *fakeRepo) UpdateCredential(_ context.Context, id uuid.UUID, credential string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Credential = credential
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	out := f.rows[:0]
	for _, a := range f.rows {
		if a.ID != id {
			out = append(out, a)
		}
	}
	f.rows = out
	return nil
}
