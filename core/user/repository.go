package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
)

// Collection holds one document per user, keyed by user id.
const Collection = "users"

// userDoc is the stored shape of a User; the password hash is persisted here
// while User itself keeps it out of JSON responses.
type userDoc struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	AvatarPath   string    `json:"avatarPath,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	IsActive     bool      `json:"isActive"`
	PasswordHash []byte    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastLogin    time.Time `json:"lastLogin"`
}

func (d userDoc) toUser(id string) User {
	return User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		AvatarPath:   d.AvatarPath,
		AvatarURL:    d.AvatarURL,
		IsActive:     d.IsActive,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		LastLogin:    d.LastLogin,
	}
}

func toUserDoc(usr User) userDoc {
	return userDoc{
		Name:         usr.Name,
		Email:        usr.Email,
		AvatarPath:   usr.AvatarPath,
		AvatarURL:    usr.AvatarURL,
		IsActive:     usr.IsActive,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastLogin:    usr.LastLogin,
	}
}

type docRepository struct {
	store core.DocStore
}

var _ Repository = (*docRepository)(nil)

func NewRepository(store core.DocStore) Repository {
	return &docRepository{store: store}
}

func (repo *docRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error {
	docs, err := repo.store.Query(ctx, Collection, core.DocQuery{
		Filters: []core.DocFilter{{Field: "email", Value: email}},
	})
	if err != nil {
		return core.NewStoreError(err, "checking email uniqueness")
	}
	for _, kd := range docs {
		excluded := false
		for _, excl := range excludedUsers {
			if excl.ID == kd.Key {
				excluded = true
				break
			}
		}
		if !excluded {
			return ErrEmailExists
		}
	}
	return nil
}

func (repo *docRepository) CreateUser(ctx context.Context, usr User) (User, error) {
	doc, err := core.ToDocument(toUserDoc(usr))
	if err != nil {
		return User{}, err
	}
	if err = repo.store.Set(ctx, Collection, usr.ID, doc, false); err != nil {
		return User{}, core.NewStoreError(err, "creating user")
	}
	return usr, nil
}

func (repo *docRepository) GetUserByID(ctx context.Context, id string) (User, error) {
	doc, err := repo.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return User{}, ErrNotFound
		}
		return User{}, core.NewStoreError(err, "getting user")
	}
	var ud userDoc
	if err = doc.Decode(&ud); err != nil {
		return User{}, errors.Wrap(err, "decoding user")
	}
	return ud.toUser(id), nil
}

func (repo *docRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	docs, err := repo.store.Query(ctx, Collection, core.DocQuery{
		Filters: []core.DocFilter{{Field: "email", Value: email}},
		Limit:   1,
	})
	if err != nil {
		return User{}, core.NewStoreError(err, "getting user by email")
	}
	if len(docs) == 0 {
		return User{}, ErrNotFound
	}
	var ud userDoc
	if err = docs[0].Doc.Decode(&ud); err != nil {
		return User{}, errors.Wrap(err, "decoding user")
	}
	return ud.toUser(docs[0].Key), nil
}

func (repo *docRepository) UpdateUser(ctx context.Context, usr User) (User, error) {
	doc, err := core.ToDocument(toUserDoc(usr))
	if err != nil {
		return User{}, err
	}
	if err = repo.store.Set(ctx, Collection, usr.ID, doc, true); err != nil {
		return User{}, core.NewStoreError(err, "updating user")
	}
	return usr, nil
}
