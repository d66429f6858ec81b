// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unclebandit/mailpilot-backend/internal/controller"
	"github.com/unclebandit/mailpilot-backend/internal/db"
	"github.com/unclebandit/mailpilot-backend/internal/handler"
	"github.com/unclebandit/mailpilot-backend/internal/mailer"
	"github.com/unclebandit/mailpilot-backend/internal/middleware"
	"github.com/unclebandit/mailpilot-backend/internal/queue"
	"github.com/unclebandit/mailpilot-backend/internal/repository"
	"github.com/unclebandit/mailpilot-backend/internal/service"
	"github.com/unclebandit/mailpilot-backend/internal/state"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()

	var q queue.Queue
	if url := os.Getenv("AMQP_URL"); url != "" {
		amqpQueue, err := queue.DialAMQP(url)
		if err != nil {
			log.Fatalf("failed to connect to AMQP: %v", err)
		}
		defer amqpQueue.Close()
		q = amqpQueue
	} else {
		log.Println("⚠️ AMQP_URL not set, using in-memory queue")
		mem := queue.NewInMemoryQueue()
		mem.Subscribe(queue.CampaignEventsTopic, func(payload any) error {
			ev, err := queue.DecodeEvent(payload)
			if err != nil {
				return err
			}
			log.Printf("Campaign event %s for %s\n", ev.Type, ev.CampaignID)
			return nil
		})
		q = mem
	}

	credentialRepo := &repository.CredentialRepository{DB: db.DB}
	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	templateRepo := &repository.TemplateRepository{DB: db.DB}

	sessions := state.NewStore()

	credentialService := &service.CredentialService{
		Repo:   credentialRepo,
		State:  sessions,
		Prober: mailer.FromEnv(),
	}
	campaignService := &service.CampaignService{
		Repo:  campaignRepo,
		State: sessions,
		Queue: q,
	}
	editorService := &service.EditorService{
		State:        sessions,
		CampaignRepo: campaignRepo,
		TemplateRepo: templateRepo,
		Queue:        q,
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
	}
	editorController := &controller.EditorController{
		EditorService: editorService,
	}
	credentialHandler := &handler.CredentialHandler{
		Service:   credentialService,
		Templates: templateRepo,
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		AllowCredentials: false,
	}))
	r.Use(middleware.Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth)

		// Credential routes
		r.Get("/credentials", credentialHandler.ListCredentialsHandler)
		r.Post("/credentials", credentialHandler.AddCredentialHandler)
		r.Delete("/credentials/{provider}/{address}", credentialHandler.RemoveCredentialHandler)
		r.Post("/credentials/{provider}/{address}/test", credentialHandler.TestCredentialHandler)

		// Catalog routes
		r.Get("/templates", credentialHandler.ListTemplatesHandler)
		r.Get("/cities", credentialHandler.ListCitiesHandler)

		// Campaign list routes
		r.Get("/campaigns", campaignController.ListCampaigns)
		r.Put("/campaigns/{id}/active", campaignController.SetActive)
		r.Delete("/campaigns/{id}", campaignController.DeleteCampaign)

		// Editor routes
		r.Post("/editor", editorController.CreateDraft)
		r.Get("/editor", editorController.GetDraft)
		r.Post("/editor/open/{id}", editorController.OpenDraft)
		r.Post("/editor/cancel", editorController.CancelDraft)
		r.Post("/editor/save", editorController.SaveDraft)
		r.Post("/editor/templates", editorController.AddTemplate)
		r.Delete("/editor/templates/{id}", editorController.RemoveTemplate)
		r.Post("/editor/senders", editorController.AddSender)
		r.Delete("/editor/senders/{address}", editorController.RemoveSender)
		r.Put("/editor/senders/{address}/rate", editorController.SetSenderRate)
		r.Put("/editor/city", editorController.SetCity)
		r.Put("/editor/days-till-close", editorController.SetDaysTillClose)
		r.Post("/editor/subject-lines", editorController.AddSubjectLine)
		r.Delete("/editor/subject-lines/{index}", editorController.RemoveSubjectLine)
	})

	log.Println("🚀 Server running on :8080")
	log.Fatal(http.ListenAndServe(":8080", r))
}
