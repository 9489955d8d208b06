package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/jung-kurt/gofpdf"
	"github.com/mama165/sdk-go/logs"

	"slack-chat/internal"
	"slack-chat/moderation"
	"slack-chat/repositories"
	"slack-chat/services"
)

// seed fills an empty store with demo users, channels and messages so the
// viewer and the API have something to show during development.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Open stores
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		log.Fatalf("Failed to open bluge writer: %v", err)
	}
	defer blugeWriter.Close()

	moderator, err := moderation.NewModerator(config.CensoredWords, charReplacement, logger)
	if err != nil {
		log.Fatalf("Moderator error: %v", err)
	}

	userRepository := repositories.NewUserRepository(db)
	channelRepository := repositories.NewChannelRepository(db)
	messageRepository := repositories.NewMessageRepository(db, logger)
	searchRepository := repositories.NewSearchRepository(blugeWriter)

	authService := services.NewAuthService(userRepository, config.AuthTokenDuration)
	channelService := services.NewChannelService(channelRepository)
	messageService := services.NewMessageService(messageRepository, channelRepository, searchRepository, moderator, logger)

	ctx := context.Background()

	// 3. Users
	for _, username := range []string{"alice", "bob", "carol"} {
		if _, err := authService.Register(username, username+"@example.com", "ComplexPass123"); err != nil {
			log.Fatalf("Failed to register %s: %v", username, err)
		}
	}

	// 4. Channels
	general, err := channelService.Create("general", "Company wide chatter", false, "alice")
	if err != nil {
		log.Fatalf("Failed to create channel: %v", err)
	}
	if _, err := channelService.Create("random", "Everything else", false, "bob"); err != nil {
		log.Fatalf("Failed to create channel: %v", err)
	}
	if _, err := channelService.Join(general.ID, "bob"); err != nil {
		log.Fatalf("Failed to join channel: %v", err)
	}

	// 5. Messages: plain text, an image and a binary attachment so every
	// message type shows up in the viewer
	posts := []services.PostMessageCommand{
		{ChannelID: general.ID, Author: "alice", Content: "Welcome to general, everyone"},
		{ChannelID: general.ID, Author: "bob", Content: "Bonjour à tous"},
		{ChannelID: general.ID, Author: "alice", Content: "Here is the logo draft", Attachment: genImage()},
		{ChannelID: general.ID, Author: "bob", Content: "Quarterly report attached", Attachment: genPDF()},
	}
	for _, post := range posts {
		if _, err := messageService.Post(ctx, post); err != nil {
			log.Fatalf("Failed to post message: %v", err)
		}
	}

	fmt.Printf("Seeded 3 users, 2 channels and %d messages into %s\n", len(posts), config.BadgerFilepath)
}

// genPDF builds a small document in memory to exercise the file path.
func genPDF() []byte {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(40, 20, "Quarterly Report")
	pdf.Ln(20)

	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 10, "Numbers are up and to the right.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		log.Fatalf("PDF generation failed: %v", err)
	}
	return buf.Bytes()
}

// genImage builds a small PNG with a gradient to exercise the image path.
func genImage() []byte {
	width, height := 64, 64
	img := image.NewRGBA(image.Rectangle{image.Point{0, 0}, image.Point{width, height}})

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 4 % 255), 100, 200, 0xff})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Fatalf("Image generation failed: %v", err)
	}
	return buf.Bytes()
}
