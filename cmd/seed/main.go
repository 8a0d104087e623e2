package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"parcelbook/internal/config"
	"parcelbook/internal/db"
	"parcelbook/internal/errors"
	"parcelbook/internal/logging"
	"parcelbook/internal/model"
	"parcelbook/internal/repository"
	"parcelbook/internal/service"
)

// SeedData is the layout of a seed document.
type SeedData struct {
	Users   []model.User   `json:"users"`
	Parcels []model.Parcel `json:"parcels"`
}

type seedResult struct {
	usersCreated  int
	usersExisting int
	parcelsBooked int
	skipped       int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)
	slog.Info("starting seed", "source", cfg.SeedSource)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN, db.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close(gormDB)

	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		slog.Error("run migrations", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	data, err := loadSeed(ctx, cfg.SeedSource)
	if err != nil {
		slog.Error("load seed data", "source", cfg.SeedSource, "error", err)
		os.Exit(1)
	}
	slog.Info("seed data loaded", "users", len(data.Users), "parcels", len(data.Parcels))

	users := service.NewUserService(repository.NewUserRepository(gormDB), nil, nil)
	parcels := service.NewParcelService(
		repository.NewParcelRepository(gormDB),
		repository.NewParcelStatusEventRepository(gormDB),
		users,
		nil,
		nil,
		service.ParcelOptions{RequireKnownOwner: cfg.RequireKnownOwner},
	)
	defer parcels.Close()

	res, err := seed(ctx, users, parcels, data)
	if err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seed completed",
		"users_created", res.usersCreated,
		"users_existing", res.usersExisting,
		"parcels_booked", res.parcelsBooked,
		"skipped", res.skipped,
	)
}

// loadSeed reads the seed document from a local file or an http(s) URL.
func loadSeed(ctx context.Context, source string) (*SeedData, error) {
	var body []byte
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch seed: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("seed source returned status code: %d", resp.StatusCode)
		}
		if body, err = io.ReadAll(resp.Body); err != nil {
			return nil, fmt.Errorf("read seed: %w", err)
		}
	} else {
		var err error
		if body, err = os.ReadFile(source); err != nil {
			return nil, fmt.Errorf("read seed: %w", err)
		}
	}

	var data SeedData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse seed JSON: %w", err)
	}
	return &data, nil
}

// seed registers users before booking parcels so owner checks can pass. Invalid records are
// skipped and logged; store failures abort.
func seed(ctx context.Context, users service.UserService, parcels service.ParcelService, data *SeedData) (seedResult, error) {
	var res seedResult
	for i := range data.Users {
		_, created, err := users.Register(ctx, &data.Users[i])
		if err != nil {
			if isRecordError(err) {
				slog.Warn("skipping user", "email", data.Users[i].Email, "error", err)
				res.skipped++
				continue
			}
			return res, fmt.Errorf("register %s: %w", data.Users[i].Email, err)
		}
		if created {
			res.usersCreated++
		} else {
			res.usersExisting++
		}
	}

	for i := range data.Parcels {
		err := bookParcel(ctx, parcels, &data.Parcels[i])
		if err != nil {
			if isRecordError(err) {
				slog.Warn("skipping parcel", "email", data.Parcels[i].Email, "error", err)
				res.skipped++
				continue
			}
			return res, fmt.Errorf("book parcel for %s: %w", data.Parcels[i].Email, err)
		}
		res.parcelsBooked++
	}
	return res, nil
}

// bookParcel books p as Pending and then walks it to its seeded status.
func bookParcel(ctx context.Context, parcels service.ParcelService, p *model.Parcel) error {
	status := p.Status
	if status != "" && !status.Valid() {
		return errors.ErrInvalidStatus
	}
	p.Status = ""
	booked, err := parcels.Book(ctx, p)
	if err != nil {
		return err
	}
	if status == "" || status == model.ParcelStatusPending {
		return nil
	}
	if _, err := parcels.Patch(ctx, booked.ID, model.ParcelFields{Status: &status}, false); err != nil {
		return fmt.Errorf("set status %s: %w", status, err)
	}
	return nil
}

// isRecordError reports whether err rejects one record rather than signalling a store fault.
func isRecordError(err error) bool {
	return errors.MapErrorToHTTP(err).StatusCode < http.StatusInternalServerError
}
