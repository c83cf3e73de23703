package shipper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig contains configuration for the MongoDB transport.
type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	Username       string
	Token          string
	ConnectTimeout time.Duration
	PingTimeout    time.Duration
	WriteTimeout   time.Duration
	BufferSize     int
}

// DefaultMongoConfig returns default configuration.
func DefaultMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:            "mongodb://localhost:27017",
		Database:       "streembit",
		Collection:     "logs",
		Username:       "streembit",
		ConnectTimeout: 10 * time.Second,
		PingTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		BufferSize:     1000,
	}
}

// logDocument is the MongoDB document structure for a shipped entry.
type logDocument struct {
	Time    time.Time `bson:"time"`
	Level   string    `bson:"level"`
	Message string    `bson:"message"`
}

// documentWriter inserts a batch of documents into a collection.
type documentWriter interface {
	InsertMany(ctx context.Context, docs []interface{}) error
}

// collectionWriter adapts a *mongo.Collection to documentWriter.
type collectionWriter struct {
	collection *mongo.Collection
}

func (w collectionWriter) InsertMany(ctx context.Context, docs []interface{}) error {
	_, err := w.collection.InsertMany(ctx, docs)
	return err
}

// MongoTransport ships entries into a MongoDB collection.
type MongoTransport struct {
	config *MongoConfig
	writer documentWriter
	batch  *batcher

	// disconnect releases the client; nil when there is no client to release.
	disconnect func(ctx context.Context) error
}

// NewMongoTransport connects to MongoDB and verifies the connection with a ping.
// The token is used as the password of the configured user.
func NewMongoTransport(ctx context.Context, cfg *MongoConfig, logger *slog.Logger) (*MongoTransport, error) {
	cfg = withMongoDefaults(cfg)
	if logger == nil {
		logger = slog.Default()
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	if cfg.Token != "" {
		clientOptions.SetAuth(options.Credential{
			AuthSource: cfg.Database,
			Username:   cfg.Username,
			Password:   cfg.Token,
		})
	}

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		// Disconnect on ping failure
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Connected to MongoDB log collector", "database", cfg.Database, "collection", cfg.Collection)

	writer := collectionWriter{collection: client.Database(cfg.Database).Collection(cfg.Collection)}
	return newMongoTransport(cfg, writer, client.Disconnect), nil
}

func newMongoTransport(cfg *MongoConfig, writer documentWriter, disconnect func(ctx context.Context) error) *MongoTransport {
	t := &MongoTransport{
		config:     cfg,
		writer:     writer,
		disconnect: disconnect,
	}
	t.batch = newBatcher(cfg.BufferSize, t.insert)
	return t
}

func withMongoDefaults(cfg *MongoConfig) *MongoConfig {
	defaults := DefaultMongoConfig()
	if cfg == nil {
		return defaults
	}
	out := *cfg
	if out.URI == "" {
		out.URI = defaults.URI
	}
	if out.Database == "" {
		out.Database = defaults.Database
	}
	if out.Collection == "" {
		out.Collection = defaults.Collection
	}
	if out.Username == "" {
		out.Username = defaults.Username
	}
	if out.ConnectTimeout <= 0 {
		out.ConnectTimeout = defaults.ConnectTimeout
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = defaults.PingTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.BufferSize <= 0 {
		out.BufferSize = defaults.BufferSize
	}
	return &out
}

// Send queues an entry.
func (t *MongoTransport) Send(ctx context.Context, entry Entry) error {
	return t.batch.send(entry)
}

// Flush inserts every queued entry. On failure the entries stay queued.
func (t *MongoTransport) Flush(ctx context.Context) error {
	return t.batch.flush(ctx)
}

// Close flushes pending entries and disconnects.
func (t *MongoTransport) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), t.config.WriteTimeout)
	defer cancel()

	first, flushErr := t.batch.close(ctx)
	if !first || t.disconnect == nil {
		return flushErr
	}
	if err := t.disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return flushErr
}

// Pending returns the number of queued entries.
func (t *MongoTransport) Pending() int {
	return t.batch.pending()
}

func (t *MongoTransport) insert(ctx context.Context, entries []Entry) error {
	writeCtx, cancel := context.WithTimeout(ctx, t.config.WriteTimeout)
	defer cancel()

	if err := t.writer.InsertMany(writeCtx, entriesToDocuments(entries)); err != nil {
		return fmt.Errorf("failed to insert log entries: %w", err)
	}
	return nil
}

func entriesToDocuments(entries []Entry) []interface{} {
	docs := make([]interface{}, len(entries))
	for i, e := range entries {
		docs[i] = logDocument{
			Time:    e.Time,
			Level:   e.Level,
			Message: e.Message,
		}
	}
	return docs
}

var _ Transport = (*MongoTransport)(nil)
