package graph

import (
	"context"
	_ "embed"
	"time"

	"github.com/graph-gophers/graphql-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/VitaminP8/gqlapi/internal/metrics"
	"github.com/VitaminP8/gqlapi/internal/post"
	"github.com/VitaminP8/gqlapi/internal/subscription"
	"github.com/VitaminP8/gqlapi/internal/user"
)

//go:embed schema.graphqls
var schemaSDL string

const DefaultCountInterval = time.Second

// Resolver is the root of every Query, Mutation and Subscription field.
// Dependencies are injected here; Metrics may be nil.
type Resolver struct {
	UserStore           user.UserStorage
	PostStore           post.PostStorage
	SubscriptionManager subscription.Manager
	Metrics             *metrics.Metrics
	CountInterval       time.Duration
}

// NewSchema parses the schema and binds it to r.
func NewSchema(r *Resolver, log *zap.Logger) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(schemaSDL, r, graphql.Logger(panicLogger{log: log}))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse graphql schema")
	}
	return schema, nil
}

func (r *Resolver) countInterval() time.Duration {
	if r.CountInterval <= 0 {
		return DefaultCountInterval
	}
	return r.CountInterval
}

type panicLogger struct {
	log *zap.Logger
}

func (l panicLogger) LogPanic(_ context.Context, value interface{}) {
	l.log.Error("graphql resolver panic", zap.Any("panic", value), zap.Stack("stack"))
}
