package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/hmatsuda/renraku/internal/keyring"
)

type TokenSetCmd struct{}

func (c *TokenSetCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}

	var token string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("ClassNavi API token").
				EchoMode(huh.EchoModePassword).
				Value(&token).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("token cannot be empty")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}

	if err := keyring.SetToken(token); err != nil {
		return err
	}
	fmt.Println("Token stored in OS keyring")
	return nil
}

type TokenDeleteCmd struct{}

func (c *TokenDeleteCmd) Run(ctx *Context) error {
	if err := keyring.DeleteToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("No token stored")
			return nil
		}
		return err
	}
	fmt.Println("Token deleted from OS keyring")
	return nil
}
