package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/spf13/cobra"

	"github.com/YohanTz/starknet-query/client"
	"github.com/YohanTz/starknet-query/config"
	"github.com/YohanTz/starknet-query/metrics"
	"github.com/YohanTz/starknet-query/provider"
	"github.com/YohanTz/starknet-query/query"
	"github.com/YohanTz/starknet-query/types"
)

const version = "0.1.0"

//nolint:funlen // Flag wiring makes the root command long
func NewCommand() cobra.Command {
	var configPath string
	var logLevelF string
	var maxRetriesF string
	var metricsF bool
	var metricsHostF string
	var metricsPortF string

	var cfg config.Config
	var contracts config.ContractAddresses
	var maxRetries types.Retries
	var logger junoUtils.ZapLogger

	preRunE := func(cmd *cobra.Command, args []string) error {
		// Flags win, then env vars, then the config file
		config.LoadDotEnv()
		configFromEnv := config.FromEnv()
		cfg.Fill(&configFromEnv)
		contractsFromEnv := config.ContractAddressesFromEnv()
		contracts.Fill(&contractsFromEnv)

		if configPath != "" {
			configFromFile, err := config.FromFile(configPath)
			if err != nil {
				return err
			}
			cfg.Fill(&configFromFile)
		}
		if err := cfg.Check(); err != nil {
			return err
		}

		parsedRetries, err := types.RetriesFromString(maxRetriesF)
		if err != nil {
			return err
		}
		maxRetries = parsedRetries

		logLevel := junoUtils.NewLogLevel(junoUtils.INFO)
		if err := logLevel.Set(logLevelF); err != nil {
			return err
		}

		loadedLogger, err := junoUtils.NewZapLogger(logLevel, true)
		if err != nil {
			return err
		}
		logger = *loadedLogger

		return nil
	}

	setup := func(cmd *cobra.Command) (*app, func(), error) {
		reader, chainID, err := provider.New(cmd.Context(), cfg.Provider.HTTP, &logger)
		if err != nil {
			return nil, nil, err
		}

		var tracer metrics.Tracer = metrics.NewNoOpMetrics()
		cleanup := func() {}

		if metricsF {
			address := fmt.Sprintf("%s:%s", metricsHostF, metricsPortF)
			server := metrics.NewMetrics(address, chainID, &logger)
			tracer = server

			go func() {
				if err := server.Start(); err != nil && err.Error() != "http: Server closed" {
					logger.Errorw("Failed to start metrics server", "error", err)
				}
			}()
			cleanup = func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(
					context.Background(), 5*time.Second, //nolint:mnd // Shutdown grace
				)
				defer shutdownCancel()
				if err := server.Stop(shutdownCtx); err != nil {
					logger.Errorw("Failed to stop metrics server", "error", err)
				}
			}
		}

		a, err := newApp(reader, chainID, &cfg, contracts, maxRetries, &logger, tracer)
		if err != nil {
			cleanup()

			return nil, nil, err
		}

		closeAll := func() {
			a.close()
			cleanup()
		}

		return a, closeAll, nil
	}

	//nolint:exhaustruct // Only specifying used fields
	cmd := cobra.Command{
		Use:     "starkwatch",
		Short:   "Query, watch and submit Starknet state from the command line",
		Version: version,
		Args:    cobra.NoArgs,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
	cmd.PersistentFlags().StringVar(&cfg.Provider.HTTP, "provider-http", "", "Provider http address")
	cmd.PersistentFlags().StringVar(&cfg.Provider.WS, "provider-ws", "", "Provider ws address")
	cmd.PersistentFlags().StringVar(
		&cfg.Account.Address, "account-address", "", "Account address, required for write commands",
	)
	cmd.PersistentFlags().StringVar(
		&cfg.Account.PrivKey, "account-priv-key", "", "Account private key, required for local signing",
	)
	cmd.PersistentFlags().StringVar(
		&cfg.Account.SignerURL,
		"signer-url",
		"",
		"Signer url address, required if using an external signer",
	)
	cmd.PersistentFlags().StringVar(
		&contracts.Strk,
		"strk-contract-address",
		"",
		"STRK token contract address. Default values are provided for Sepolia and Mainnet",
	)
	cmd.PersistentFlags().StringVar(
		&contracts.Eth,
		"eth-contract-address",
		"",
		"ETH token contract address. Default values are provided for Sepolia and Mainnet",
	)
	cmd.PersistentFlags().StringVar(
		&contracts.Naming,
		"naming-contract-address",
		"",
		"Starknet ID naming contract address. Default values are provided for Sepolia and Mainnet",
	)
	cmd.PersistentFlags().BoolVar(&metricsF, "metrics", false, "Enable metric tracking via Prometheus")
	cmd.PersistentFlags().StringVar(&metricsHostF, "metrics-host", "localhost", "Host for the metric server")
	cmd.PersistentFlags().StringVar(&metricsPortF, "metrics-port", "9090", "Port for the metric server")
	cmd.PersistentFlags().StringVar(
		&maxRetriesF,
		"max-retries",
		"infinite",
		"How many times to reconnect the block header stream."+
			" It can be either a positive integer or the key word 'infinite'",
	)
	cmd.PersistentFlags().StringVar(
		&logLevelF, "log-level", junoUtils.INFO.String(), "Options: trace, debug, info, warn, error.",
	)

	cmd.AddCommand(
		newBalanceCommand(preRunE, setup, &logger),
		newTxCommand(preRunE, setup),
		newNameCommand(preRunE, setup),
		newResolveCommand(preRunE, setup),
		newCallCommand(preRunE, setup),
		newInvokeCommand(preRunE, setup),
	)

	return cmd
}

type setupFunc func(cmd *cobra.Command) (*app, func(), error)

func newBalanceCommand(
	preRunE func(*cobra.Command, []string) error, setup setupFunc, logger *junoUtils.ZapLogger,
) *cobra.Command {
	var watch bool
	var tokenF string

	//nolint:exhaustruct // Only specifying used fields
	cmd := &cobra.Command{
		Use:     "balance [address]",
		Short:   "Fetch an account's token balance, optionally refreshing it on every new block",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: preRunE,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeAll, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeAll()

			balArgs := client.BalanceArgs{}
			if len(args) == 1 {
				address, err := types.AddressFromString(args[0])
				if err != nil {
					return err
				}
				balArgs.Address = &address
			}
			if tokenF != "" {
				token, err := types.AddressFromString(tokenF)
				if err != nil {
					return err
				}
				balArgs.Token = &token
			}

			q, err := a.client.Balance(balArgs, query.Options{Watch: watch})
			if err != nil {
				return err
			}

			snap, err := q.Wait(cmd.Context())
			if err != nil {
				return err
			}
			balance, err := query.DataAs[types.Balance](snap)
			if err != nil {
				return err
			}
			fmt.Println(balance.Text(10))

			if !watch {
				return nil
			}

			unsubscribe := q.Subscribe(func(snap query.Snapshot) {
				if snap.Status != query.StatusSuccess {
					return
				}
				if balance, err := query.DataAs[types.Balance](snap); err == nil {
					fmt.Println(balance.Text(10))
				}
			})
			defer unsubscribe()

			a.startWatcher(cmd.Context())
			waitForSignal(cmd.Context(), logger)

			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep refreshing the balance on every new block")
	cmd.Flags().StringVar(&tokenF, "token", "", "ERC-20 token contract address, defaults to STRK")

	return cmd
}

func newTxCommand(preRunE func(*cobra.Command, []string) error, setup setupFunc) *cobra.Command {
	var wait bool
	var pollInterval time.Duration

	//nolint:exhaustruct // Only specifying used fields
	cmd := &cobra.Command{
		Use:     "tx <hash>",
		Short:   "Fetch a transaction's status, optionally blocking until it is final",
		Args:    cobra.ExactArgs(1),
		PreRunE: preRunE,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeAll, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeAll()

			hash, err := types.TransactionHashFromString(args[0])
			if err != nil {
				return err
			}

			if wait {
				outcome, err := a.client.WaitForTransaction(cmd.Context(), hash, pollInterval)
				if err != nil {
					return err
				}
				printOutcome(outcome)

				return nil
			}

			q, err := a.client.TransactionStatus(hash, query.Options{})
			if err != nil {
				return err
			}
			snap, err := q.Wait(cmd.Context())
			if err != nil {
				return err
			}
			outcome, err := query.DataAs[client.TransactionOutcome](snap)
			if err != nil {
				return err
			}
			printOutcome(outcome)

			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the transaction reaches a terminal state")
	cmd.Flags().DurationVar(
		&pollInterval, "poll-interval", time.Second, "How often to re-ask the node while waiting",
	)

	return cmd
}

func newNameCommand(preRunE func(*cobra.Command, []string) error, setup setupFunc) *cobra.Command {
	//nolint:exhaustruct // Only specifying used fields
	return &cobra.Command{
		Use:     "name <address>",
		Short:   "Resolve an address to its stark domain",
		Args:    cobra.ExactArgs(1),
		PreRunE: preRunE,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeAll, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeAll()

			address, err := types.AddressFromString(args[0])
			if err != nil {
				return err
			}

			q, err := a.client.StarkName(address, query.Options{})
			if err != nil {
				return err
			}
			snap, err := q.Wait(cmd.Context())
			if err != nil {
				return err
			}
			name, err := query.DataAs[string](snap)
			if err != nil {
				return err
			}
			if name == "" {
				fmt.Println("(no stark domain)")
			} else {
				fmt.Println(name)
			}

			return nil
		},
	}
}

func newResolveCommand(preRunE func(*cobra.Command, []string) error, setup setupFunc) *cobra.Command {
	//nolint:exhaustruct // Only specifying used fields
	return &cobra.Command{
		Use:     "resolve <domain>",
		Short:   "Resolve a stark domain to its address",
		Args:    cobra.ExactArgs(1),
		PreRunE: preRunE,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeAll, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeAll()

			q, err := a.client.StarkAddress(args[0], query.Options{})
			if err != nil {
				return err
			}
			snap, err := q.Wait(cmd.Context())
			if err != nil {
				return err
			}
			address, err := query.DataAs[types.Address](snap)
			if err != nil {
				return err
			}
			fmt.Println(address.String())

			return nil
		},
	}
}

func newCallCommand(preRunE func(*cobra.Command, []string) error, setup setupFunc) *cobra.Command {
	//nolint:exhaustruct // Only specifying used fields
	return &cobra.Command{
		Use:     "call <contract> <entry-point> [calldata...]",
		Short:   "Call a contract view function and print the raw felt results",
		Args:    cobra.MinimumNArgs(2),
		PreRunE: preRunE,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeAll, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeAll()

			contract, err := types.AddressFromString(args[0])
			if err != nil {
				return err
			}
			calldata, err := parseCalldata(args[2:])
			if err != nil {
				return err
			}

			q, err := a.client.ContractRead(client.ReadArgs{
				Contract:   contract,
				EntryPoint: args[1],
				Calldata:   calldata,
			}, query.Options{})
			if err != nil {
				return err
			}
			snap, err := q.Wait(cmd.Context())
			if err != nil {
				return err
			}
			result, err := query.DataAs[[]*felt.Felt](snap)
			if err != nil {
				return err
			}
			for _, f := range result {
				fmt.Println(f.String())
			}

			return nil
		},
	}
}

func newInvokeCommand(preRunE func(*cobra.Command, []string) error, setup setupFunc) *cobra.Command {
	var wait bool

	//nolint:exhaustruct // Only specifying used fields
	cmd := &cobra.Command{
		Use:     "invoke <contract> <entry-point> [calldata...]",
		Short:   "Submit a contract call as a transaction signed by the configured account",
		Args:    cobra.MinimumNArgs(2),
		PreRunE: preRunE,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeAll, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeAll()

			if err := a.connectAccount(cmd.Context()); err != nil {
				return err
			}

			contract, err := types.AddressFromString(args[0])
			if err != nil {
				return err
			}
			calldata, err := parseCalldata(args[2:])
			if err != nil {
				return err
			}

			mutation := a.client.ContractWrite()
			result, err := mutation.RunAsync(cmd.Context(), []rpc.InvokeFunctionCall{{
				ContractAddress: contract.Felt(),
				FunctionName:    args[1],
				CallData:        calldata,
			}})
			if err != nil {
				return err
			}
			fmt.Println(result.TransactionHash.String())

			if !wait {
				return nil
			}

			outcome, err := a.client.WaitForTransaction(cmd.Context(), result.TransactionHash, time.Second)
			if err != nil {
				return err
			}
			printOutcome(outcome)

			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the transaction reaches a terminal state")

	return cmd
}

func parseCalldata(args []string) ([]*felt.Felt, error) {
	calldata := make([]*felt.Felt, len(args))
	for i, arg := range args {
		f, err := new(felt.Felt).SetString(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot turn calldata `%s` into a felt: %w", arg, err)
		}
		calldata[i] = f
	}

	return calldata, nil
}

func printOutcome(outcome client.TransactionOutcome) {
	fmt.Printf("finality: %s\n", outcome.FinalityStatus)
	fmt.Printf("execution: %s\n", outcome.ExecutionStatus)
	if outcome.FailureReason != "" {
		fmt.Printf("failure reason: %s\n", outcome.FailureReason)
	}
}

func waitForSignal(ctx context.Context, logger *junoUtils.ZapLogger) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-signalCh:
		logger.Info("Received shutdown signal")
	case <-ctx.Done():
	}
}

func main() {
	command := NewCommand()
	if err := command.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
