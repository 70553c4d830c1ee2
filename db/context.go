package db

import (
	"clara/ingest"
	"clara/store"

	"github.com/gin-gonic/gin"
)

const storeKey = "store"
const ingestorKey = "ingestor"

// Use estes middlewares no setup do gin
func SetStoreToContext(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(storeKey, st)
		c.Next()
	}
}

func StoreInstance(c *gin.Context) store.Store {
	v, ok := c.Get(storeKey)
	if !ok {
		return nil
	}
	st, _ := v.(store.Store)
	return st
}

func SetIngestorToContext(ing *ingest.Ingestor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ingestorKey, ing)
		c.Next()
	}
}

func IngestorInstance(c *gin.Context) *ingest.Ingestor {
	v, ok := c.Get(ingestorKey)
	if !ok {
		return nil
	}
	ing, _ := v.(*ingest.Ingestor)
	return ing
}
