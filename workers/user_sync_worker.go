package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stephancmorris/league-fan-hub/models"
	"github.com/stephancmorris/league-fan-hub/utils"
)

// ProfileFromSync matches the JSON shape of the profile sync service.
type ProfileFromSync struct {
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   *string   `json:"picture,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GetProfileChangesResponse struct {
	Profiles []ProfileFromSync `json:"profiles"`
}

// UserSyncWorker mirrors identity-provider profiles into the local users
// table so leaderboard names and pictures stay current even for users who
// have not hit /auth/sync recently.
type UserSyncWorker struct {
	db           *gorm.DB
	baseURL      string // e.g. "http://localhost:8500"
	endpointPath string // e.g. "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
	scheduler    gocron.Scheduler
}

func NewUserSyncWorker(db *gorm.DB, baseURL, endpointPath, serviceToken string) *UserSyncWorker {
	return &UserSyncWorker{
		db:           db,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.SharedHTTPClient(),
	}
}

// Start backfills once, then runs incremental syncs on a fixed cadence.
// The worker shuts down when ctx is cancelled.
func (w *UserSyncWorker) Start(ctx context.Context) error {
	log.Println("🔁 Starting User Sync Worker (profile service → users)…")

	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial profile sync failed: %v", err)
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create sync scheduler: %w", err)
	}
	w.scheduler = sched

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Profile sync batch failed: %v", err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}

	sched.Start()

	go func() {
		<-ctx.Done()
		if err := w.scheduler.Shutdown(); err != nil {
			log.Printf("⚠️ Sync scheduler shutdown: %v", err)
		}
		log.Println("⏹️ User Sync Worker stopped")
	}()

	return nil
}

// getLastSyncTime finds the most recent UpdatedAt in the local users table.
func (w *UserSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM users").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches profile changes since the given time and upserts them on
// auth_id.
func (w *UserSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid profile sync URL %q: %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to profile sync service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("profile sync service returned %d: %s", resp.StatusCode, string(body))
	}

	var response GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode profile sync response: %w", err)
	}

	if len(response.Profiles) == 0 {
		return nil
	}

	log.Printf("[SYNC] 📥 Processing %d profile(s) since %s…", len(response.Profiles), sinceStr)

	var upsertCount, errorCount int
	for _, remote := range response.Profiles {
		if remote.Subject == "" {
			errorCount++
			continue
		}
		name := remote.Name
		if name == "" {
			name = remote.Email
		}
		localUser := models.User{
			ID:        uuid.NewString(),
			AuthID:    remote.Subject,
			Email:     remote.Email,
			Name:      name,
			Picture:   remote.Picture,
			Role:      models.RoleUser,
			CreatedAt: remote.CreatedAt,
			UpdatedAt: remote.UpdatedAt,
		}

		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "auth_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"email", "name", "picture", "updated_at",
			}),
		}).Create(&localUser).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert user (subject=%q): %v", remote.Subject, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[SYNC] ✅ Synced %d profile(s) (%d upserted, %d errors)",
		len(response.Profiles), upsertCount, errorCount)
	return nil
}
