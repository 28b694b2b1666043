package cli

import (
	"errors"
	"fmt"

	"github.com/hmatsuda/renraku/internal/keyring"
)

type DoctorCmd struct{}

func (c *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running renraku health checks...")
	fmt.Println()

	hasError := false

	// Check 1: storage reachable
	if _, err := ctx.Store.GetSettings(); err != nil {
		fmt.Printf("❌ Storage: FAIL\n   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Storage: OK (%s)\n", ctx.Store.GetConfigPath())
	}

	// Check 2: timezone resolves
	if today, err := ctx.Store.Today(); err != nil {
		fmt.Printf("❌ Timezone: FAIL\n   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Timezone: OK (today is %s)\n", today)
	}

	// Check 3: per-subject queues
	for _, subject := range ctx.Config.SubjectNames() {
		queue, err := ctx.Store.GetQueue(subject)
		if err != nil {
			fmt.Printf("❌ Queue %s: FAIL\n   Error: %v\n", subject, err)
			hasError = true
			continue
		}
		fmt.Printf("✓ Queue %s: OK (%d rows)\n", subject, len(queue))
	}

	// Check 4: OS keyring
	if !keyring.IsAvailable() {
		fmt.Println("⊘ Keyring: SKIPPED (OS keyring unavailable, CLASSNAVI_TOKEN env var still works)")
	} else if _, err := keyring.GetToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("⊘ Keyring: SKIPPED (no token stored)")
		} else {
			fmt.Printf("❌ Keyring: FAIL\n   Error: %v\n", err)
			hasError = true
		}
	} else {
		fmt.Println("✓ Keyring: OK (token stored)")
	}

	// Check 5: ClassNavi configuration
	if ctx.Config.ClassNavi.BaseURL == "" {
		fmt.Println("⊘ ClassNavi: SKIPPED (no base URL configured)")
	} else {
		fmt.Printf("✓ ClassNavi: OK (%s, wait %s)\n", ctx.Config.ClassNavi.BaseURL, ctx.Config.ClassNavi.Wait())
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All health checks passed")
	return nil
}
