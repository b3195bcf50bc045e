package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"AquaLink/config"
	"AquaLink/internal/client"
	"AquaLink/internal/location"
	"AquaLink/internal/model/dto"
	"AquaLink/internal/trigger"
	"AquaLink/pkg/token"
)

// sosctl 命令行触发器：回车两次确认报警，倒计时内回车取消
func main() {
	cfg := config.Cfg

	provider := location.NewStaticProvider(
		cfg.StaticLatitude,
		cfg.StaticLongitude,
		cfg.StaticAccuracy,
		time.Duration(cfg.LocationDelayMS)*time.Millisecond,
	)
	source := location.NewSource(provider)
	defer source.Stop()

	apiToken := cfg.APIToken
	if apiToken == "" && cfg.JWTSecret != "" {
		// 没配 token 就拿本地密钥铸一个，只适合开发环境
		if err := token.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize token generator: %v\n", err)
			os.Exit(1)
		}
		minted, _, _, err := token.GenerateTokenPair(cfg.APIUserID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to mint debug token: %v\n", err)
			os.Exit(1)
		}
		apiToken = minted
	}

	dc, err := client.NewDispatchClient(cfg.APIBaseURL, apiToken)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create dispatch client: %v\n", err)
		os.Exit(1)
	}

	// 倒计时秒数以服务端设置为准，拉不到时退回默认值
	countdown := 0
	fetchCtx, cancelFetch := context.WithTimeout(context.Background(), 5*time.Second)
	settings, err := dc.GetSettings(fetchCtx)
	cancelFetch()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load emergency settings, using defaults: %v\n", err)
	} else {
		countdown = settings.CountdownSeconds
	}

	done := make(chan struct{})

	machine := trigger.NewMachine(source, dc, trigger.Config{
		CountdownSeconds: countdown,
		IsTest:           cfg.TriggerTestMode,
		UserName:         cfg.UserName,
		UserPhone:        cfg.UserPhone,
	}, trigger.Callbacks{
		OnStateChange: func(from, to trigger.State) {
			switch to {
			case trigger.StateConfirming:
				fmt.Println("Press Enter again within 3s to confirm the emergency alert.")
			case trigger.StateCountingDown:
				fmt.Println("Countdown started. Press Enter to cancel.")
			case trigger.StateSending:
				fmt.Println("Sending alert...")
			case trigger.StateIdle:
				if from == trigger.StateCountingDown || from == trigger.StateConfirming {
					fmt.Println("Cancelled.")
				}
			}
		},
		OnTick: func(remaining int) {
			if remaining > 0 {
				fmt.Printf("  %d...\n", remaining)
			}
		},
		OnSuccess: func(summary *dto.DispatchSummary) {
			fmt.Printf("Alert #%d sent: %s\n", summary.AlertID, summary.Message)
			if summary.ContactsNotified < summary.TotalContacts {
				fmt.Printf("Warning: %d of %d contacts could not be reached.\n",
					summary.TotalContacts-summary.ContactsNotified, summary.TotalContacts)
				for _, e := range summary.Errors {
					fmt.Printf("  contact %d: %s\n", e.ContactID, e.Error)
				}
			}
			close(done)
		},
		OnError: func(err error) {
			fmt.Printf("Alert failed: %v\n", err)
			close(done)
		},
	})

	mode := "LIVE"
	if cfg.TriggerTestMode {
		mode = "TEST"
	}
	fmt.Printf("SOS trigger ready (%s mode, server %s).\n", mode, cfg.APIBaseURL)
	fmt.Println("Press Enter to start, 'q' to quit.")

	input := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- strings.TrimSpace(scanner.Text())
		}
		close(input)
	}()

	for {
		select {
		case line, ok := <-input:
			if !ok || line == "q" {
				return
			}
			machine.Tap()
		case <-done:
			return
		}
	}
}
