// Command seed bootstraps a development database: it runs the migrations,
// creates the first admin account and, with -demo, loads a small school
// (one class, a teacher, two students, the morning periods and a Monday
// timetable) so the API has something to serve right away.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolops/presence-api/pkg/config"
	"github.com/schoolops/presence-api/pkg/database"
)

func main() {
	var (
		adminCode     string
		adminPassword string
		demo          bool
	)

	flag.StringVar(&adminCode, "admin-code", "ADMIN", "short code for the admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "initial admin password (required)")
	flag.BoolVar(&demo, "demo", false, "also load demo data")
	flag.Parse()

	if adminPassword == "" {
		log.Fatal("-admin-password is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adminID, err := ensureAdmin(ctx, db, adminCode, adminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}
	log.Printf("admin account ready (id=%d, code=%s)", adminID, adminCode)

	if demo {
		if err := loadDemo(ctx, db); err != nil {
			log.Fatalf("demo data failed: %v", err)
		}
		log.Print("demo data loaded")
	}
}

// ensureAdmin inserts the admin user if no account with the short code
// exists yet. Re-running the seed leaves an existing admin untouched so the
// password set through the API survives.
func ensureAdmin(ctx context.Context, db *sqlx.DB, code, password string, cost int) (int64, error) {
	var existing int64
	err := db.GetContext(ctx, &existing, `SELECT id FROM users WHERE short_code = $1`, code)
	if err == nil {
		return existing, nil
	}

	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return 0, err
	}

	var id int64
	err = db.GetContext(ctx, &id, `
		INSERT INTO users (first_name, last_name, short_code, role, password_hash)
		VALUES ('System', 'Admin', $1, 3, $2)
		RETURNING id`, code, string(hash))
	return id, err
}

func loadDemo(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var teacherID int64
	if err := tx.GetContext(ctx, &teacherID, `
		INSERT INTO users (first_name, last_name, short_code, role)
		VALUES ('Grace', 'Hopper', 'GHO', 2)
		ON CONFLICT (short_code) DO UPDATE SET updated_at = now()
		RETURNING id`); err != nil {
		return err
	}

	var classID int64
	if err := tx.GetContext(ctx, &classID, `
		INSERT INTO classes (short, description, teacher_id)
		VALUES ('7a', 'Demo class', $1)
		RETURNING id`, teacherID); err != nil {
		return err
	}

	students := [][2]string{{"Ada", "Byron"}, {"Alan", "Turing"}}
	for _, s := range students {
		var studentID int64
		if err := tx.GetContext(ctx, &studentID, `
			INSERT INTO users (first_name, last_name, short_code, role)
			VALUES ($1, $2, $3, 1)
			ON CONFLICT (short_code) DO UPDATE SET updated_at = now()
			RETURNING id`, s[0], s[1], s[0][:1]+s[1][:2]); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO enrollments (student_id, class_id) VALUES ($1, $2)
			ON CONFLICT (student_id) DO UPDATE SET class_id = EXCLUDED.class_id, updated_at = now()`,
			studentID, classID); err != nil {
			return err
		}
	}

	// Four morning periods starting at 08:00, back to back with breaks.
	periods := map[int]int{1: 480, 2: 530, 3: 585, 4: 635}
	for id, start := range periods {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO periods (id, start_minute) VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING`, id, start); err != nil {
			return err
		}
	}

	subjects := map[int]string{1: "Math", 2: "Physics", 3: "English", 4: "History"}
	for periodID, subject := range subjects {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO timetable_entries (id, class_id, room_id, period_id, teacher_id, subject, day_of_week)
			VALUES ($1, $2, 101, $3, $4, $5, 1)
			ON CONFLICT (class_id, day_of_week, period_id) DO NOTHING`,
			uuid.NewString(), classID, periodID, teacherID, subject); err != nil {
			return err
		}
	}

	return tx.Commit()
}
