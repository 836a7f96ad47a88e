package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"go.klb.dev/wlgrab/internal/content"
	"go.klb.dev/wlgrab/internal/session"
	"go.klb.dev/wlgrab/internal/wayland"
)

func runGrab(v *viper.Viper) error {
	setupLogging(v)

	client, err := wayland.Connect(v.GetString("display"))
	if err != nil {
		return err
	}
	defer client.Close()

	s := session.New(client, session.Options{
		ListOnly: v.GetBool("list-types"),
		Logger:   slog.Default(),
	})
	capture, err := s.Run()
	if err != nil {
		return err
	}

	if v.GetBool("list-types") {
		for _, mime := range capture.Mimes {
			fmt.Println(mime)
		}
		return nil
	}

	if out := v.GetString("output"); out != "" {
		if err := os.WriteFile(out, capture.Raw, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		return nil
	}

	switch c := capture.Content.(type) {
	case content.Text:
		_, err = os.Stdout.Write(c)
		return err
	case content.Image:
		fmt.Printf("%dx%d\n", c.Width, c.Height())
		return nil
	default:
		return fmt.Errorf("unexpected content %T", capture.Content)
	}
}
