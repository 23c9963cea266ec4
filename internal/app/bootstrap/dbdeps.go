// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/tabtrail/internal/app/system/imagehost"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown. It is the
// central place for database clients and backend connections.
//
// The Shutdown hook is responsible for closing these connections gracefully
// when the application terminates.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// ImageHost uploads captured screenshots to external storage
	ImageHost imagehost.Uploader
}
