// Package main is the entry point for the airwave command line radio client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/airwave-cli/airwave/internal/config"
	"github.com/airwave-cli/airwave/internal/domain/display"
	"github.com/airwave-cli/airwave/internal/domain/player"
	"github.com/airwave-cli/airwave/internal/domain/station"
	"github.com/airwave-cli/airwave/internal/infra/audiodev"
	"github.com/airwave-cli/airwave/internal/infra/metadata"
	"github.com/airwave-cli/airwave/internal/infra/source"
	"github.com/airwave-cli/airwave/internal/version"
)

const logo = `
    ___    ________ _       _____ _    ______
   /   |  /  _/ __ \ |     / /   | |  / / __/
  / /| |  / // /_/ / | /| / / /| | | / / _/
 / ___ |_/ // _, _/| |/ |/ / ___ | |/ / /___
/_/  |_/___/_/ |_| |__/|__/_/  |_|___/_____/
`

func main() {
	stationID := flag.Int("station", -1, "station id to tune to (default: the server's primary stream)")
	volume := flag.Int("volume", player.MaxVolume, "initial volume level (0-9)")
	list := flag.Bool("list", false, "list available stations and exit")
	noLogo := flag.Bool("no-logo", false, "suppress the startup logo")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()

	if *volume < player.MinVolume || *volume > player.MaxVolume {
		log.Fatal().Int("volume", *volume).Msg("Volume must be between 0 and 9")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *list {
		listStations(ctx, cfg.APIURL)
		return
	}

	if !*noLogo {
		fmt.Println(logo)
	}
	fmt.Printf("%s\n", version.GetInfo().String())
	fmt.Println("Press 0-9 to adjust the volume. Press Ctrl+C to exit.")

	// Dial the metadata endpoint in the background while the audio device
	// warms up; both have to be ready before playback can start.
	type dialResult struct {
		channel *metadata.Channel
		err     error
	}
	dialed := make(chan dialResult, 1)
	go func() {
		ch, err := metadata.Dial(ctx, metadata.WebsocketDial(cfg.WebsocketURL), 0, 0)
		dialed <- dialResult{channel: ch, err: err}
	}()

	var session *player.Session
	if err := audiodev.Initialize(); err != nil {
		log.Error().Err(err).Msg("No audio device available, continuing without playback")
	} else {
		defer audiodev.Terminate()
		client := source.NewClient("airwave/" + version.Version)
		session = player.NewSession(audiodev.New(audiodev.DefaultFramesPerBuffer), player.OpenStream(client))
		if err := session.SetVolume(*volume); err != nil {
			log.Fatal().Err(err).Msg("Could not set the initial volume")
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println()
		log.Info().Msg("Shutting down")
		cancel()
		if session != nil {
			session.Stop()
		}
		os.Exit(0)
	}()

	res := <-dialed
	if res.err != nil {
		log.Fatal().Err(res.err).Str("url", cfg.WebsocketURL).Msg("Cannot reach the metadata endpoint")
	}
	channel := res.channel
	defer channel.Close()

	first, err := channel.ReceiveNext(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Metadata channel failed")
	}

	stations := first.Stations()
	listenURL := first.Station.ListenURL
	if *stationID >= 0 {
		selected, err := station.Find(stations, *stationID)
		if err != nil {
			log.Fatal().Int("station", *stationID).Msg("Requested station does not exist, use -list to see the available ids")
		}
		listenURL = selected.URL
	}
	if current, ok := station.FindByURL(stations, listenURL); ok {
		fmt.Printf("\nStation:    %s\n", current.Name)
	}

	state := display.NewState()
	render := newRenderer(state, session)

	if session != nil {
		session.Play(ctx, listenURL)
		defer session.Stop()
		go readVolumeKeys(os.Stdin, session, render)
	}

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				state.Tick()
				render.Progress()
			}
		}
	}()

	apply := func(msg *metadata.Message) {
		if state.Apply(msg.Update()) == display.ChangeNewSong {
			render.NewSong()
		} else {
			render.Progress()
		}
	}
	apply(first)

	for {
		msg, err := channel.ReceiveNext(ctx)
		if err != nil {
			fmt.Println()
			log.Fatal().Err(err).Msg("Metadata channel failed")
		}
		apply(msg)
	}
}

func listStations(ctx context.Context, apiURL string) {
	snapshot, err := metadata.FetchSnapshot(ctx, apiURL)
	if err != nil {
		log.Fatal().Err(err).Str("url", apiURL).Msg("Cannot fetch the station list")
	}
	for _, d := range snapshot.Stations() {
		fmt.Printf("%3d  %s\n", d.ID, d.Name)
	}
}
