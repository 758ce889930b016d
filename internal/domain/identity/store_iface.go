package identity

import "context"

type StoreAPI interface {
	GetActor(ctx context.Context, id string) (Actor, error)
	FindCredentials(ctx context.Context, email string) (Credentials, error)
	ListActors(ctx context.Context, filter ActorFilter) ([]Actor, error)
	CreateActor(ctx context.Context, actor Actor, passwordHash string) (Actor, error)
	UpdateActor(ctx context.Context, id string, fn func(*Actor) error) (Actor, error)
	GetDepartment(ctx context.Context, id string) (Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	CreateDepartment(ctx context.Context, dept Department) (Department, error)
	UpdateDepartment(ctx context.Context, id string, fn func(*Department) error) (Department, error)
}
