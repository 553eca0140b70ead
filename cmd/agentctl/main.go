// Command agentctl drives the host proxy from a shell the way a sandboxed
// agent would from code. It exists for poking at a proxy during development:
// checking reachability, reading chain state, submitting a transaction, or
// relaying a model call, all with the same SDK the agent itself uses.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AssegaiLabs/assegailabs-sdk/assegai"
	"github.com/AssegaiLabs/assegailabs-sdk/internal/config"
	"github.com/AssegaiLabs/assegailabs-sdk/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("agentctl: %v", err)
	}
}

func run(ctx context.Context) error {
	// Credentials usually live in a .env next to the agent bundle.
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("ASSEGAI_CONFIG"), "path to the agent manifest")
	chainName := flag.String("chain", "eip155:1", "chain alias or CAIP-2 id")
	model := flag.String("model", "claude-sonnet-4-5", "model for the ask command")
	timeout := flag.Duration("timeout", 0, "per-request timeout, e.g. 5m for transactions")
	debug := flag.Bool("debug", false, "trace every request")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.OutputPaths,
	}); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts := []assegai.Option{}
	if cfg.Proxy.URL != "" {
		opts = append(opts, assegai.WithProxyURL(cfg.Proxy.URL))
	}
	if cfg.Agent.ID != "" {
		opts = append(opts, assegai.WithAgentID(cfg.Agent.ID))
	}
	if cfg.Agent.Token != "" {
		opts = append(opts, assegai.WithAgentToken(cfg.Agent.Token))
	}
	switch {
	case *timeout > 0:
		opts = append(opts, assegai.WithTimeout(*timeout))
	case cfg.Proxy.TimeoutSeconds > 0:
		opts = append(opts, assegai.WithTimeout(time.Duration(cfg.Proxy.TimeoutSeconds)*time.Second))
	}
	if *debug || cfg.Proxy.Debug {
		opts = append(opts, assegai.WithDebug(true))
	}

	client, err := assegai.New(opts...)
	if err != nil {
		return err
	}

	// A bad -chain alias should only fail the commands that use a chain.
	chain, chainErr := cfg.ResolveChain(*chainName)

	switch args[0] {
	case "health":
		if !client.Health(ctx) {
			return errors.New("proxy is not reachable")
		}
		fmt.Println("proxy healthy")
		return nil
	case "wallet-address":
		if chainErr != nil {
			return chainErr
		}
		addr, err := client.WalletAddress(ctx, chain)
		if err != nil {
			return err
		}
		fmt.Println(addr)
		return nil
	case "query":
		if chainErr != nil {
			return chainErr
		}
		return runQuery(ctx, client, chain, args[1:])
	case "balance":
		if len(args) != 2 {
			return errors.New("usage: agentctl balance <address>")
		}
		if chainErr != nil {
			return chainErr
		}
		balance, err := client.Balance(ctx, chain, args[1])
		if err != nil {
			return err
		}
		fmt.Println(balance.String())
		return nil
	case "tx":
		if len(args) != 3 {
			return errors.New("usage: agentctl tx <to> <value-wei>")
		}
		if chainErr != nil {
			return chainErr
		}
		result, err := client.RequestTransaction(ctx, assegai.TransactionRequest{
			Chain: chain,
			To:    args[1],
			Value: args[2],
		})
		if err != nil {
			return err
		}
		fmt.Println(result.TxHash)
		return nil
	case "ask":
		if len(args) != 2 {
			return errors.New("usage: agentctl ask <prompt>")
		}
		resp, err := client.CallClaude(ctx, assegai.ClaudeRequest{
			Model:     *model,
			MaxTokens: 1024,
			Messages:  []assegai.Message{assegai.TextMessage(assegai.RoleUser, args[1])},
		})
		if err != nil {
			return err
		}
		fmt.Println(resp.Text())
		return nil
	case "log":
		if len(args) < 3 {
			return errors.New("usage: agentctl log <level> <message> [json-data]")
		}
		var data map[string]any
		if len(args) == 4 {
			if err := json.Unmarshal([]byte(args[3]), &data); err != nil {
				return fmt.Errorf("parse log data: %w", err)
			}
		}
		client.Log(ctx, assegai.LogLevel(args[1]), args[2], data)
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runQuery(ctx context.Context, client *assegai.Client, chain string, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: agentctl query <method> [json-params]")
	}
	var params []any
	if len(args) == 2 {
		if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
			return fmt.Errorf("parse params: %w", err)
		}
	}
	result, err := client.QueryChain(ctx, chain, args[0], params)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: agentctl [flags] <command> [args]

Commands:
  health                           check proxy reachability
  wallet-address                   print the agent wallet address
  query <method> [json-params]     read-only RPC call, e.g. query eth_blockNumber
  balance <address>                print an account balance in wei
  tx <to> <value-wei>              request a transaction (raise -timeout for approvals)
  ask <prompt>                     relay a prompt to the model behind the proxy
  log <level> <message> [data]     send a log line to the operator UI

Flags:
`)
	flag.PrintDefaults()
}
