package classnavi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(baseURL string) *Client {
	c := New(Config{BaseURL: baseURL, Token: "secret", Wait: time.Millisecond})
	c.sleep = func(time.Duration) {}
	return c
}

func TestStudent(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/students/s1" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("Authorization = %q", got)
			}
			json.NewEncoder(w).Encode(Student{LoginID: "s1", Name: "Alice", Email: "a@example.com"})
		}))
		defer srv.Close()

		s, err := testClient(srv.URL).Student(context.Background(), " s1 ")
		if err != nil {
			t.Fatalf("Student() returned unexpected error: %v", err)
		}
		if s.Email != "a@example.com" {
			t.Errorf("Student() = %+v", s)
		}
	})

	t.Run("not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Student(context.Background(), "nobody")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Student() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		if _, err := testClient(srv.URL).Student(context.Background(), "s1"); err == nil {
			t.Fatal("Student() should fail on a 500")
		}
	})
}

func TestListStudents(t *testing.T) {
	page := func(from, n int) []Student {
		var students []Student
		for i := 0; i < n; i++ {
			students = append(students, Student{LoginID: fmt.Sprintf("s%d", from+i)})
		}
		return students
	}

	t.Run("pages until short page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("page") {
			case "1":
				json.NewEncoder(w).Encode(page(0, probePageSize))
			case "2":
				json.NewEncoder(w).Encode(page(probePageSize, 10))
			default:
				t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
			}
		}))
		defer srv.Close()

		students, err := testClient(srv.URL).ListStudents(context.Background())
		if err != nil {
			t.Fatalf("ListStudents() returned unexpected error: %v", err)
		}
		if len(students) != probePageSize+10 {
			t.Errorf("ListStudents() returned %d students, want %d", len(students), probePageSize+10)
		}
	})

	t.Run("stops on empty page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "1" {
				json.NewEncoder(w).Encode(page(0, probePageSize))
				return
			}
			json.NewEncoder(w).Encode([]Student{})
		}))
		defer srv.Close()

		students, err := testClient(srv.URL).ListStudents(context.Background())
		if err != nil {
			t.Fatalf("ListStudents() returned unexpected error: %v", err)
		}
		if len(students) != probePageSize {
			t.Errorf("ListStudents() returned %d students, want %d", len(students), probePageSize)
		}
	})

	t.Run("stops when page parameter is ignored", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always the same full page regardless of ?page
			json.NewEncoder(w).Encode(page(0, probePageSize))
		}))
		defer srv.Close()

		students, err := testClient(srv.URL).ListStudents(context.Background())
		if err != nil {
			t.Fatalf("ListStudents() returned unexpected error: %v", err)
		}
		if len(students) != probePageSize {
			t.Errorf("ListStudents() returned %d students, repeated pages must not accumulate", len(students))
		}
	})

	t.Run("probes size parameters in order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("per_page") != "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if r.URL.Query().Get("limit") == "" {
				t.Errorf("expected limit parameter, got %s", r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode(page(0, 5))
		}))
		defer srv.Close()

		students, err := testClient(srv.URL).ListStudents(context.Background())
		if err != nil {
			t.Fatalf("ListStudents() returned unexpected error: %v", err)
		}
		if len(students) != 5 {
			t.Errorf("ListStudents() returned %d students, want 5", len(students))
		}
	})

	t.Run("all parameters rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		if _, err := testClient(srv.URL).ListStudents(context.Background()); err == nil {
			t.Fatal("ListStudents() should fail when every size parameter is rejected")
		}
	})

	t.Run("wrapped response shape", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string][]Student{"students": page(0, 3)})
		}))
		defer srv.Close()

		students, err := testClient(srv.URL).ListStudents(context.Background())
		if err != nil {
			t.Fatalf("ListStudents() returned unexpected error: %v", err)
		}
		if len(students) != 3 {
			t.Errorf("ListStudents() returned %d students, want 3", len(students))
		}
	})
}
