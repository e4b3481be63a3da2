package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"furious-host/internal/config"
	"furious-host/internal/db"
	"furious-host/internal/domain"
	"furious-host/internal/llm"
	"furious-host/internal/repository"
	"furious-host/internal/service"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	ticketRepo := repository.NewPgTicketRepository(pool)
	roleRepo := repository.NewPgRoleRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.AIGatewayURL, cfg.AIGatewayKey, cfg.AIModel, logger)
	chatSvc := service.NewChatService(logger, messageRepo, llmClient)
	ticketSvc := service.NewTicketService(logger, ticketRepo, roleRepo)

	email := "cli_test@example.com"
	if len(os.Args) > 1 {
		email = strings.TrimSpace(os.Args[1])
	}

	user, err := ensureUser(ctx, userRepo, profileRepo, email)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("===== Furious Host Soporte (%s) =====\n", user.Email)
	for {
		fmt.Println("\n[1] Chatear con soporte")
		fmt.Println("[2] Ver historial de chat")
		fmt.Println("[3] Mis tickets")
		fmt.Println("[4] Crear ticket")
		fmt.Println("[5] Salir")
		fmt.Print("Selecciona una opcion: ")

		line, _ := reader.ReadString('\n')
		switch strings.TrimSpace(line) {
		case "1":
			if err := chatFlow(ctx, reader, user, chatSvc); err != nil {
				fmt.Printf("Error en chat: %v\n", err)
			}
		case "2":
			if err := printHistory(ctx, user, chatSvc); err != nil {
				fmt.Printf("Error cargando historial: %v\n", err)
			}
		case "3":
			if err := printTickets(ctx, user, ticketSvc); err != nil {
				fmt.Printf("Error cargando tickets: %v\n", err)
			}
		case "4":
			if err := createTicketFlow(ctx, reader, user, ticketSvc); err != nil {
				fmt.Printf("Error creando ticket: %v\n", err)
			} else {
				fmt.Println("Ticket creado.")
			}
		case "5":
			os.Exit(0)
		default:
			fmt.Println("Opcion invalida.")
		}
	}
}

func chatFlow(ctx context.Context, reader *bufio.Reader, user domain.User, chatSvc *service.ChatService) error {
	fmt.Println("---- Modo Chat (escribe 'salir' para terminar chat) ----")
	for {
		fmt.Print("Tu > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("leer input: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
			fmt.Println("Saliendo del chat...")
			return nil
		}

		turn, err := chatSvc.Send(ctx, user.ID, text)
		if err != nil {
			fmt.Printf("error generando respuesta: %v\n", err)
			continue
		}
		fmt.Printf("Furious AI > %s\n", turn.Response)
	}
}

func printHistory(ctx context.Context, user domain.User, chatSvc *service.ChatService) error {
	messages, err := chatSvc.History(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Println("Sin mensajes todavia.")
		return nil
	}
	for _, m := range messages {
		who := "Tu"
		if m.Role == domain.MessageRoleAssistant {
			who = "Furious AI"
		}
		fmt.Printf("[%s] %s > %s\n", m.CreatedAt.Format(time.RFC3339), who, m.Content)
	}
	return nil
}

func printTickets(ctx context.Context, user domain.User, ticketSvc *service.TicketService) error {
	tickets, err := ticketSvc.ListOwn(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		fmt.Println("Sin tickets todavia.")
		return nil
	}
	for _, t := range tickets {
		fmt.Printf("[%s] (%s/%s) %s\n", t.CreatedAt.Format("2006-01-02"), t.Status, t.Priority, t.Title)
		if t.AdminNotes != "" {
			fmt.Printf("    Notas de soporte: %s\n", t.AdminNotes)
		}
	}
	return nil
}

func createTicketFlow(ctx context.Context, reader *bufio.Reader, user domain.User, ticketSvc *service.TicketService) error {
	fmt.Print("Titulo: ")
	title, _ := reader.ReadString('\n')
	fmt.Print("Descripcion: ")
	description, _ := reader.ReadString('\n')
	fmt.Print("Prioridad (low/medium/high/urgent, default medium): ")
	priority, _ := reader.ReadString('\n')

	_, err := ticketSvc.Create(ctx, user.ID, strings.TrimSpace(title), strings.TrimSpace(description), strings.TrimSpace(priority))
	return err
}

func ensureUser(ctx context.Context, users repository.UserRepository, profiles repository.ProfileRepository, email string) (domain.User, error) {
	user, err := users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	user = domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	profile := domain.Profile{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := profiles.Create(ctx, profile); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
