package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/farmstock-api/internal/application/usecase"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/farmstock-api/pkg/config"
	"github.com/jhoicas/farmstock-api/pkg/jwt"
	"github.com/jhoicas/farmstock-api/pkg/logger"
)

// Siembra las ubicaciones de la granja y, con -token, imprime un JWT de desarrollo.
func main() {
	role := flag.String("role", entity.RoleAdmin, "rol del token de desarrollo")
	user := flag.String("user", "dev-admin", "usuario del token de desarrollo")
	token := flag.Bool("token", false, "imprimir un token de desarrollo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	n, err := usecase.NewLocationUseCase(postgres.NewLocationRepository(pool)).SeedDefaults(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("sembrar ubicaciones")
	}
	log.Info().Int("locations", n).Msg("ubicaciones sembradas")

	if *token {
		tok, err := jwt.Generate(cfg.JWT.Secret, *user, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			log.Fatal().Err(err).Msg("generar token")
		}
		fmt.Println(tok)
	}
}
