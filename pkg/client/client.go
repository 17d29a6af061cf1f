package client

import (
	"context"

	"vntrips/pkg/logger"

	"time"
)

// Client holds the process-wide external service handles. Constructors are
// connect-or-die: a service that cannot reach its dependencies at boot should
// not come up.
type Client struct {
	Mongo   *MongoClient
	Storage *StorageClient

	log *logger.Logger
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, connTimeout time.Duration) {
	c.log = log
	c.Mongo = NewMongoClient(log, mongoURI, connTimeout)
}

func (c *Client) SetStorage(log *logger.Logger, cfg StorageConfig) {
	c.log = log
	c.Storage = NewStorageClient(log, cfg)
}

func (c *Client) GracefulShutdown() {
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Mongo.Client.Disconnect(ctx); err != nil && c.log != nil {
			c.log.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}
}
