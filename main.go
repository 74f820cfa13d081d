package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/booklend/backend/config"
	"github.com/booklend/backend/handlers"
	"github.com/booklend/backend/middleware"
	"github.com/booklend/backend/service"
	"github.com/booklend/backend/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("mongodb:", err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Println("mongodb disconnect:", err)
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("mongodb indexes:", err)
	}

	lending := &service.Lending{Books: db, Presents: db, Users: db}

	authHandler := &handlers.AuthHandler{Users: db, JWTSecret: cfg.JWTSecret}
	booksHandler := &handlers.BooksHandler{Lending: lending, Users: db}
	presentsHandler := &handlers.PresentsHandler{Lending: lending, Users: db}
	adminHandler := &handlers.AdminHandler{Lending: lending}

	r := chi.NewRouter()
	r.Use(middleware.AllowAll())
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"welcome to booklend."}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Post("/book/add", booksHandler.Add)
			r.Get("/held", booksHandler.Held)
			r.Get("/owned", booksHandler.Owned)
			r.Post("/book/share", booksHandler.Share)
			r.Post("/book/give", booksHandler.Give)
			r.Post("/book/return", booksHandler.Return)
			r.Post("/present/add", presentsHandler.Add)
			r.Post("/present/give", presentsHandler.Give)
			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/items", adminHandler.Items)
				r.Delete("/book/{id}", adminHandler.DeleteBook)
				r.Post("/book/{id}/return/force", adminHandler.ForceReturnBook)
				r.Delete("/present/{id}", adminHandler.DeletePresent)
			})
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
