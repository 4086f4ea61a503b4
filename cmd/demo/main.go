// File: cmd/demo/main.go
//
// Standalone walkthrough of the studio workflow against canned AI
// responses. No credentials or services needed; run it to see a session
// move landing -> analyzing -> editing -> published.
package main

import (
	"context"
	"log"
	"time"

	"github.com/rs/zerolog"

	"aura-studio/internal/domain/model"
	aiAdapters "aura-studio/internal/infra/adapters/ai"
	"aura-studio/internal/infra/storage/memory"
	"aura-studio/internal/infra/worker"
	"aura-studio/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := zerolog.Nop()
	gen := aiAdapters.NewNoopAdapter()
	sessions := memory.NewSessionRepo(nil, &logger)

	pool := worker.NewPool(2, &logger)
	pool.Start(ctx)
	defer pool.Stop()

	studio := usecase.NewStudioUseCase(sessions, gen, pool, &logger)
	refine := usecase.NewRefineUseCase(sessions, gen, &logger)

	// 1. Open a session.
	sess, err := studio.CreateSession(ctx)
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	log.Printf("session %s phase=%s", sess.ID, sess.Phase)

	// 2. Upload a résumé image and watch the analysis finish.
	upload := model.Upload{
		FileName: "resume.png",
		FileSize: 4096,
		DataURI:  "data:image/png;base64,aGVsbG8=",
	}
	if _, err := studio.ProcessUpload(ctx, sess.ID, upload); err != nil {
		log.Fatalf("upload: %v", err)
	}
	sess = waitForEditing(ctx, studio, sess.ID)
	log.Printf("parsed %q (%s), %d themes suggested", sess.Resume.Name, sess.Persona, len(sess.Themes))

	// 3. One refinement turn.
	sess, err = refine.Send(ctx, sess.ID, "Make my summary punchier.")
	if err != nil {
		log.Fatalf("chat: %v", err)
	}
	last := sess.Turns[len(sess.Turns)-1]
	log.Printf("assistant: %s", last.Text)

	// 4. Publish.
	sess, err = studio.Publish(ctx, sess.ID)
	if err != nil {
		log.Fatalf("publish: %v", err)
	}
	log.Printf("published at %s", sess.SiteURL)
}

func waitForEditing(ctx context.Context, studio usecase.StudioUseCase, id string) *model.StudioSession {
	deadline := time.Now().Add(10 * time.Second)
	for {
		sess, err := studio.GetSession(ctx, id)
		if err != nil {
			log.Fatalf("get session: %v", err)
		}
		if sess.Phase == model.PhaseEditing && !sess.GeneratingThemes {
			return sess
		}
		if sess.Notice != "" {
			log.Printf("notice: %s", sess.Notice)
		}
		if time.Now().After(deadline) {
			log.Fatalf("analysis did not finish: phase=%s", sess.Phase)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
