package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

type sequenceRepo struct{ with access }

var _ repository.SequenceRepository = (*sequenceRepo)(nil)

func seqKey(kind string, year int) string { return fmt.Sprintf("%s-%d", kind, year) }

func (r *sequenceRepo) Next(_ context.Context, kind string, year int) (int64, error) {
	var n int64
	err := r.with(func(st *state) error {
		st.sequences[seqKey(kind, year)]++
		n = st.sequences[seqKey(kind, year)]
		return nil
	})
	return n, err
}

func (r *sequenceRepo) Current(_ context.Context, kind string, year int) (int64, error) {
	var n int64
	err := r.with(func(st *state) error {
		n = st.sequences[seqKey(kind, year)]
		return nil
	})
	return n, err
}

type settingsRepo struct{ with access }

var _ repository.SettingsRepository = (*settingsRepo)(nil)

func (r *settingsRepo) Get(_ context.Context) (*entity.CompanySettings, error) {
	var out *entity.CompanySettings
	err := r.with(func(st *state) error {
		if st.settings != nil {
			c := *st.settings
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *settingsRepo) Save(_ context.Context, s *entity.CompanySettings) error {
	return r.with(func(st *state) error {
		c := *s
		st.settings = &c
		return nil
	})
}

type userRepo struct{ with access }

var _ repository.UserRepository = (*userRepo)(nil)

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.with(func(st *state) error {
		for _, o := range st.users {
			if o.ID == u.ID || strings.EqualFold(o.Username, u.Username) {
				return fmt.Errorf("usuario %s: %w", u.Username, domain.ErrDuplicate)
			}
		}
		c := *u
		st.users[u.ID] = &c
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.with(func(st *state) error {
		if u, ok := st.users[id]; ok {
			c := *u
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var out *entity.User
	err := r.with(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Username, username) {
				c := *u
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}
