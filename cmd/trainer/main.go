// Command trainer is the interactive training client. It keeps identity
// and progress on the local machine and forwards every attempt to the
// stats server in the background.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smishing-defense/backend/internal/catalog"
	"github.com/smishing-defense/backend/internal/identity"
	"github.com/smishing-defense/backend/internal/models"
	"github.com/smishing-defense/backend/internal/progress"
	"github.com/smishing-defense/backend/internal/session"
	"github.com/smishing-defense/backend/internal/syncbridge"
)

type app struct {
	catalog  *catalog.Catalog
	ids      *identity.Provider
	who      identity.Identity
	progress *progress.Store
	bridge   *syncbridge.Bridge
	server   string
	in       *bufio.Scanner
}

func main() {
	catalogPath := getEnv("CATALOG_PATH", "./messages.json")
	dataDir := getEnv("DATA_DIR", "./data")
	serverURL := getEnv("SERVER_URL", "http://localhost:3000")

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		log.Fatalf("Failed to load message catalog: %v", err)
	}

	ids := identity.NewProvider(dataDir)
	a := &app{
		catalog:  cat,
		ids:      ids,
		who:      ids.GetOrCreate(),
		progress: progress.Load(dataDir),
		bridge:   syncbridge.New(serverURL),
		server:   serverURL,
		in:       bufio.NewScanner(os.Stdin),
	}

	a.menuLoop()

	// Let in-flight deliveries finish before the process exits.
	a.bridge.Wait()
}

func (a *app) menuLoop() {
	for {
		a.printMenu()
		switch a.readLine("> ") {
		case "1":
			a.runSession(session.NewSequential(a.catalog, a.progress, a.bridge, a.who))
		case "2":
			a.pickMessage()
		case "3":
			a.printSummary()
		case "4":
			a.printServerStats()
		case "5":
			name := a.readLine("New display name: ")
			a.who = a.ids.SetName(name)
			fmt.Printf("Hello, %s!\n", a.who.UserName)
		case "6":
			if strings.EqualFold(a.readLine("Reset all local progress? (y/N) "), "y") {
				a.progress.Reset()
				fmt.Println("Progress cleared.")
			}
		case "q", "quit", "exit":
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Println("Unknown option.")
		}
	}
}

func (a *app) printMenu() {
	s := a.progress.Summary(a.catalog.Len())
	fmt.Printf("\n=== Smishing Defense Trainer ===\n")
	fmt.Printf("%s | %d/%d completed", a.who.UserName, s.CompletedCount, s.TotalCount)
	if s.CompletedCount > 0 {
		fmt.Printf(" | %d%% accuracy", s.AccuracyPercent)
	}
	fmt.Println()

	for i, item := range a.catalog.Items() {
		badge := "[ ]"
		if r, ok := a.progress.Result(item.ID); ok {
			if r.Correct {
				badge = "[+]"
			} else {
				badge = "[x]"
			}
		}
		fmt.Printf("  %s %d. %s\n", badge, i+1, item.Sender)
	}

	fmt.Println("\n1) Start training  2) Practice one message  3) Progress summary")
	fmt.Println("4) Server stats    5) Change name          6) Reset progress   q) Quit")
}

func (a *app) pickMessage() {
	n, err := strconv.Atoi(a.readLine("Message number: "))
	if err != nil || n < 1 || n > a.catalog.Len() {
		fmt.Println("Invalid message number.")
		return
	}
	item := a.catalog.At(n - 1)
	a.runSession(session.NewSingleItem(a.catalog, a.progress, a.bridge, a.who, item.ID))
}

func (a *app) runSession(ctrl *session.Controller) {
	for {
		item, ok := ctrl.Present()
		if !ok {
			break
		}

		pos, total := ctrl.Position()
		fmt.Printf("\n--- Message %d of %d ---\n", pos, total)
		fmt.Printf("From: %s\n\n  %s\n\n", item.Sender, item.Content)

		fb := a.readDecision(ctrl)
		a.printFeedback(fb)
		a.readLine("(press enter to continue) ")
		if err := ctrl.Acknowledge(); err != nil {
			log.Printf("[trainer] acknowledge failed: %v", err)
			return
		}
	}

	if ctrl.Mode() == session.ModeSequential {
		sum := ctrl.Summary()
		fmt.Printf("\n=== Training Complete ===\n")
		fmt.Printf("Score: %d/%d (%d%%)\n%s\n", sum.Score, sum.Total, sum.Percentage, sum.Message)
		if strings.EqualFold(a.readLine("Train again? (y/N) "), "y") {
			ctrl.Restart()
			a.runSession(ctrl)
			return
		}
	}
}

// readDecision keeps prompting until the controller accepts a decision,
// looping through question feedback as often as the user asks.
func (a *app) readDecision(ctrl *session.Controller) *session.Feedback {
	for {
		input := strings.ToLower(a.readLine("(a)ccept, (b)lock, or (q)uestion? "))
		var action models.Action
		switch input {
		case "a", "accept":
			action = models.ActionAccept
		case "b", "block":
			action = models.ActionBlock
		case "q", "question":
			action = models.ActionQuestion
		default:
			fmt.Println("Please answer a, b, or q.")
			continue
		}

		fb, err := ctrl.Decide(action)
		if err != nil {
			log.Printf("[trainer] decide failed: %v", err)
			continue
		}
		if fb.Kind == session.FeedbackQuestion {
			a.printFeedback(fb)
			if err := ctrl.Acknowledge(); err != nil {
				log.Printf("[trainer] acknowledge failed: %v", err)
			}
			continue
		}
		return fb
	}
}

func (a *app) printFeedback(fb *session.Feedback) {
	fmt.Printf("\n%s\n%s\n", fb.Title, fb.Text)
	for _, cue := range fb.Cues {
		fmt.Printf("  * %s\n", cue)
	}
}

func (a *app) printSummary() {
	s := a.progress.Summary(a.catalog.Len())
	fmt.Printf("\nCompleted: %d of %d\n", s.CompletedCount, s.TotalCount)
	fmt.Printf("Correct:   %d\n", s.CorrectCount)
	fmt.Printf("Accuracy:  %d%%\n", s.AccuracyPercent)
}

// printServerStats fetches the user's ledger record from the server.
// Unlike attempt forwarding this is an interactive request, so failures
// are shown to the user.
func (a *app) printServerStats() {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(a.server + "/api/user-stats/" + a.who.UserID)
	if err != nil {
		fmt.Printf("Could not reach server: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var body models.UserStatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		fmt.Printf("Could not read server response: %v\n", err)
		return
	}
	if !body.Success || body.User == nil {
		fmt.Println("No stats recorded on the server yet.")
		return
	}

	u := body.User
	fmt.Printf("\nServer stats for %s:\n", u.UserName)
	fmt.Printf("  Attempts:   %d (%d correct, %d incorrect, %d questions)\n",
		u.Summary.TotalAttempts, u.Summary.CorrectAnswers,
		u.Summary.IncorrectAnswers, u.Summary.QuestionsAsked)
	fmt.Printf("  Completed:  %d messages\n", len(u.Summary.MessagesCompleted))
	fmt.Printf("  Accuracy:   %d%%\n", u.Summary.AccuracyPercent())
	fmt.Printf("  Last seen:  %s\n", u.LastActivity.Local().Format("2006-01-02 15:04"))
}

func (a *app) readLine(prompt string) string {
	fmt.Print(prompt)
	if !a.in.Scan() {
		return "q"
	}
	return strings.TrimSpace(a.in.Text())
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
