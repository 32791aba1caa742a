package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/spec-kit/coop-scheduler/internal/domain"
)

const storesCollection = "stores"

// StoreRepository creates the store records users reference by id.
type StoreRepository interface {
	Create(ctx context.Context, name string) (*domain.Store, error)
}

type postgresStoreRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStoreRepository returns a Postgres-backed implementation.
func NewPostgresStoreRepository(pool *pgxpool.Pool) StoreRepository {
	return &postgresStoreRepository{pool: pool}
}

func (r *postgresStoreRepository) Create(ctx context.Context, name string) (*domain.Store, error) {
	const query = `INSERT INTO stores (name) VALUES ($1) RETURNING id::text, created_at`

	store := &domain.Store{Name: name}
	if err := r.pool.QueryRow(ctx, query, name).Scan(&store.ID, &store.CreatedAt); err != nil {
		return nil, err
	}
	return store, nil
}

type mongoStore struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	CreatedAt time.Time     `bson:"createdAt"`
}

type mongoStoreRepository struct {
	stores *mongo.Collection
}

// NewMongoStoreRepository returns a Mongo-backed implementation.
func NewMongoStoreRepository(db *mongo.Database) StoreRepository {
	return &mongoStoreRepository{stores: db.Collection(storesCollection)}
}

func (r *mongoStoreRepository) Create(ctx context.Context, name string) (*domain.Store, error) {
	doc := mongoStore{Name: name, CreatedAt: time.Now().UTC()}
	res, err := r.stores.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, errors.New("unexpected inserted id type")
	}
	return &domain.Store{ID: id.Hex(), Name: doc.Name, CreatedAt: doc.CreatedAt}, nil
}

type memoryStoreRepository struct {
	mu     sync.Mutex
	stores map[string]domain.Store
}

// NewMemoryStoreRepository returns a process-local implementation.
func NewMemoryStoreRepository() StoreRepository {
	return &memoryStoreRepository{stores: make(map[string]domain.Store)}
}

func (r *memoryStoreRepository) Create(_ context.Context, name string) (*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store := domain.Store{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	r.stores[store.ID] = store
	return &store, nil
}
