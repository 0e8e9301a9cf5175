// Command seed loads the sample employee records into the directory and
// publishes an upsert event for each so a watching indexer picks them up.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/StaffPilotAI/staffpilot/engine/directory"
	"github.com/StaffPilotAI/staffpilot/engine/domain"
	"github.com/StaffPilotAI/staffpilot/engine/indexer"
	"github.com/StaffPilotAI/staffpilot/pkg/natsutil"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var sampleEmployees = []domain.Employee{
	{
		ID:         "emp-001",
		Name:       "John Doe",
		Email:      "john.doe@example.com",
		Position:   "Senior Software Engineer",
		Department: "Engineering",
		Skills:     []string{"JavaScript", "TypeScript", "Node.js", "React"},
		Bio:        "Experienced full-stack developer with 8 years of experience in web development. Passionate about clean code and agile methodologies.",
		Experience: 8,
	},
	{
		ID:         "emp-002",
		Name:       "Jane Smith",
		Email:      "jane.smith@example.com",
		Position:   "Data Scientist",
		Department: "Data & Analytics",
		Skills:     []string{"Python", "Machine Learning", "TensorFlow", "SQL"},
		Bio:        "Data scientist specializing in machine learning and predictive analytics. PhD in Computer Science with focus on AI.",
		Experience: 5,
	},
	{
		ID:         "emp-003",
		Name:       "Bob Johnson",
		Email:      "bob.johnson@example.com",
		Position:   "DevOps Engineer",
		Department: "Infrastructure",
		Skills:     []string{"Docker", "Kubernetes", "AWS", "Terraform"},
		Bio:        "DevOps engineer with expertise in cloud infrastructure and CI/CD pipelines. Strong background in automation.",
		Experience: 6,
	},
	{
		ID:         "emp-004",
		Name:       "Alice Williams",
		Email:      "alice.williams@example.com",
		Position:   "Product Manager",
		Department: "Product",
		Skills:     []string{"Agile", "Scrum", "Product Strategy", "User Research"},
		Bio:        "Product manager with a track record of launching successful products. Expert in agile methodologies and user-centric design.",
		Experience: 7,
	},
	{
		ID:         "emp-005",
		Name:       "Charlie Brown",
		Email:      "charlie.brown@example.com",
		Position:   "UX Designer",
		Department: "Design",
		Skills:     []string{"Figma", "User Research", "Prototyping", "Design Systems"},
		Bio:        "Creative UX designer focused on creating intuitive and beautiful user experiences. Strong advocate for accessibility.",
		Experience: 4,
	},
}

func main() {
	var (
		neo4jURL  = flag.String("neo4j", "neo4j://localhost:7687", "Neo4j bolt URL")
		neo4jUser = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass = flag.String("neo4j-pass", "password", "Neo4j password")
		natsURL   = flag.String("nats", "", "NATS URL; when set, publish an upsert event per record")
	)
	flag.Parse()
	godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := context.Background()

	driver, err := neo4j.NewDriverWithContext(*neo4jURL, neo4j.BasicAuth(*neo4jUser, *neo4jPass, ""))
	if err != nil {
		log.Error("neo4j connect failed", "error", err)
		os.Exit(1)
	}
	defer driver.Close(ctx)
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Error("neo4j verify failed", "error", err)
		os.Exit(1)
	}

	var nc *nats.Conn
	if *natsURL != "" {
		nc, err = nats.Connect(*natsURL)
		if err != nil {
			log.Error("nats connect failed", "error", err)
			os.Exit(1)
		}
		defer nc.Drain()
	}

	store := directory.New(driver)

	created := 0
	for _, e := range sampleEmployees {
		stored, err := store.Upsert(ctx, e)
		if err != nil {
			log.Error("seed upsert failed", "id", e.ID, "error", err)
			continue
		}
		created++
		log.Info("seeded employee", "id", stored.ID, "name", stored.Name)

		if nc != nil {
			if err := natsutil.Publish(ctx, nc, indexer.ReindexSubject, stored); err != nil {
				log.Warn("publish upsert event failed", "id", stored.ID, "error", err)
			}
		}
	}

	log.Info("seed done", "created", created, "total", len(sampleEmployees))
}
