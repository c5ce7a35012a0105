// Package main: repository layer setup.
package main

import (
	"github.com/redis/go-redis/v9"

	"github.com/akinalp/rtctoken/database"
	"github.com/akinalp/rtctoken/repository"
)

// Repositories holds every repository instance.
type Repositories struct {
	User repository.UserRepository
	// SessionDenylist is nil when Redis is not configured.
	SessionDenylist repository.SessionDenylist
}

// initRepositories builds the repositories. The *sql.DB inside db is a
// thread-safe connection pool and is shared by all of them.
func initRepositories(db *database.DB, redisClient *redis.Client) *Repositories {
	repos := &Repositories{
		User: repository.NewSQLiteUserRepo(db.Conn),
	}
	if redisClient != nil {
		repos.SessionDenylist = repository.NewRedisSessionDenylist(redisClient)
	}
	return repos
}
