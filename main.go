package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"suggestion_board_backend/internal/app"
	"suggestion_board_backend/internal/config"
	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/util"
	"suggestion_board_backend/pkg/configwatcher"
)

// @title Suggestion Board API
// @version 1.0
// @description Backend for a suggestion board persisted in a remote list store.
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	provision := flag.Bool("provision", false, "Ensure lists and columns exist before serving")
	provisionOnly := flag.Bool("provision-only", false, "Ensure lists and columns exist, then exit")
	issueToken := flag.String("issue-token", "", "Print a signed API token for login[:admin] and exit")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ForceProvision = *provision
	cfg.ProvisionOnly = *provisionOnly

	if *issueToken != "" {
		token, err := issueTokenFor(cfg, *issueToken)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	application := app.NewApp(cfg)

	if cfg.ProvisionOnly {
		log.Println("Provisioning completed, exiting")
		os.Exit(0)
	}

	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(reloaded interface{}) {
		if updated, ok := reloaded.(*config.Config); ok {
			application.ApplyConfig(updated)
		}
	})

	application.Run()
}

// issueTokenFor mints a bearer token for a login, for smoke-testing an
// instance whose host identity provider is not wired up yet. Appending
// ":admin" grants the administrator role.
func issueTokenFor(cfg *config.Config, spec string) (string, error) {
	login, roleName, _ := strings.Cut(spec, ":")
	login = strings.TrimSpace(login)
	if login == "" {
		return "", fmt.Errorf("issue-token: login must not be empty")
	}

	role := model.RoleUser
	if strings.EqualFold(roleName, "admin") {
		role = model.RoleAdmin
	}

	user := &model.User{
		ID:          login,
		DisplayName: login,
		Login:       login,
		Role:        role,
	}
	return util.GenerateJWT(user, cfg.JWT.Secret, cfg.JWT.ExpireTime)
}
