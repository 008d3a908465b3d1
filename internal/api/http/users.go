package http

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`               // usually "student"
	Password string `json:"password,omitempty"` // plaintext optional (LAN rosters)
}

// POST /users/bulk accepts a JSON array body or a multipart file= (CSV of
// username,role[,password] or a JSON array). Intended for class rosters.
func BulkUpsertUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []userRow
		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file required", http.StatusBadRequest)
				return
			}
			defer f.Close()
			buf := make([]byte, 1)
			if _, err := f.Read(buf); err != nil {
				http.Error(w, "empty file", http.StatusBadRequest)
				return
			}
			if s, ok := f.(io.Seeker); ok {
				_, _ = s.Seek(0, io.SeekStart)
			}
			if buf[0] == '[' || buf[0] == '{' {
				if err := json.NewDecoder(f).Decode(&rows); err != nil {
					http.Error(w, "bad json", http.StatusBadRequest)
					return
				}
			} else {
				rs, err := parseRosterCSV(f)
				if err != nil {
					http.Error(w, "bad csv: "+err.Error(), http.StatusBadRequest)
					return
				}
				rows = rs
			}
		} else {
			if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
				http.Error(w, "expected JSON array or multipart file", http.StatusBadRequest)
				return
			}
		}

		ins, upd, err := upsertUsers(r.Context(), db, rows)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"inserted": ins, "updated": upd})
	}
}

// GET /users?role=student
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		var rows *sql.Rows
		var err error
		if role == "" {
			rows, err = db.QueryContext(r.Context(), `SELECT id,username,role FROM users ORDER BY username`)
		} else {
			rows, err = db.QueryContext(r.Context(), `SELECT id,username,role FROM users WHERE role=$1 ORDER BY username`, role)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []map[string]string{}
		for rows.Next() {
			var id, u, ro string
			if err := rows.Scan(&id, &u, &ro); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out = append(out, map[string]string{"id": id, "username": u, "role": ro})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

func parseRosterCSV(r io.Reader) ([]userRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	out := []userRow{}
	for i, rec := range records {
		if len(rec) < 2 {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "username") {
			continue // header
		}
		u := userRow{Username: strings.TrimSpace(rec[0]), Role: strings.TrimSpace(rec[1])}
		if len(rec) > 2 {
			u.Password = rec[2]
		}
		if u.Username != "" {
			out = append(out, u)
		}
	}
	return out, nil
}

func upsertUsers(ctx context.Context, db *sql.DB, rows []userRow) (inserted, updated int, err error) {
	for _, u := range rows {
		if u.Role == "" {
			u.Role = "student"
		}
		if u.Role != "student" && u.Role != "teacher" && u.Role != "admin" {
			return inserted, updated, errors.New("invalid role: " + u.Role)
		}
		hash := ""
		if u.Password != "" {
			h, herr := bcrypt.GenerateFromPassword([]byte(u.Password), 12)
			if herr != nil {
				return inserted, updated, herr
			}
			hash = string(h)
		}

		var existing string
		qerr := db.QueryRowContext(ctx, `SELECT id FROM users WHERE username=$1`, u.Username).Scan(&existing)
		switch {
		case qerr == nil:
			if hash != "" {
				_, err = db.ExecContext(ctx, `UPDATE users SET role=$1, password_hash=$2 WHERE id=$3`, u.Role, hash, existing)
			} else {
				_, err = db.ExecContext(ctx, `UPDATE users SET role=$1 WHERE id=$2`, u.Role, existing)
			}
			if err != nil {
				return inserted, updated, err
			}
			updated++
		case errors.Is(qerr, sql.ErrNoRows):
			id := u.ID
			if id == "" {
				id = uuid.NewString()
			}
			_, err = db.ExecContext(ctx, `INSERT INTO users (id,username,role,password_hash,created_at)
				VALUES ($1,$2,$3,$4,$5)`, id, u.Username, u.Role, hash, time.Now().Unix())
			if err != nil {
				return inserted, updated, err
			}
			inserted++
		default:
			return inserted, updated, qerr
		}
	}
	return inserted, updated, nil
}
