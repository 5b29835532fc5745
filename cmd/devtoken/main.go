// Command devtoken prints a signed session token for a stored user. Login is
// handled elsewhere; this is for local development against the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	intconfig "travelwizards/internal/config"
	"travelwizards/internal/domain"
	"travelwizards/internal/http/middleware"
	"travelwizards/internal/repositories"
)

func main() {
	email := flag.String("email", "", "user email")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()
	if *email == "" {
		log.Fatal("-email is required")
	}

	env := intconfig.LoadEnv()
	conn := intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	user, err := repositories.UserRepository{DB: conn, Dialect: intconfig.Dialect}.FindByEmail(context.Background(), *email)
	if err != nil {
		log.Fatalf("lookup user: %v", err)
	}
	tok, err := middleware.IssueToken([]byte(env.JWTSecret), domain.Session{
		UserID:    domain.ID(user.ID),
		CompanyID: domain.ID(user.CompanyID),
		Role:      user.Role,
	}, *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(tok)
}
