// Command ghostnoded is the composition root for the consensus core: it
// parses CLI flags, wires a database, difficulty and UTXO-diff collaborator,
// and a genesis header into a domain/consensus.Consensus, then blocks until
// an interrupt signal asks it to shut down. It does not speak any wire
// protocol -- the node's pipeline is reachable only from within this
// process (see SPEC_FULL.md §6); that boundary is what keeps this binary
// genuinely minimal.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ghostdagnet/ghostnoded/domain/consensus"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/config"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/blockvalidator"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/coinbasemanager"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/difficultymanager"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/utxodiffmanager"
)

var log = logrus.WithField("subsystem", "MAIN")

func main() {
	app := &cli.App{
		Name:  "ghostnoded",
		Usage: "runs the GHOSTDAG BlockDAG consensus core in-process",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db-path",
				Usage: "LevelDB data directory; empty runs entirely in memory",
				Value: "",
			},
			&cli.UintFlag{
				Name:  "k",
				Usage: "GHOSTDAG k-cluster bound",
				Value: 18,
			},
			&cli.UintFlag{
				Name:  "bits",
				Usage: "compact PoW target every submitted block must meet",
				Value: 0x207fffff,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "panic, fatal, error, warn, info, debug or trace",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "network-tag",
				Usage: "tag embedded in genesis and coinbase payloads",
				Value: "ghostnet-devnet",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("ghostnoded exited with an error")
	}
}

func run(c *cli.Context) error {
	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid log level: %v", err), 1)
	}
	logrus.SetLevel(level)

	cfg := config.DefaultMainnetConfig()
	cfg.K = externalapi.KType(c.Uint("k"))
	cfg.NetworkTag = c.String("network-tag")

	db, err := openDataAccessor(c.String("db-path"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed opening database: %v", err), 1)
	}

	deps := consensus.Deps{
		DifficultyManager: difficultymanager.New(uint32(c.Uint("bits"))),
		UTXODiffManager:   utxodiffmanager.New(),
	}

	genesisHeader := buildGenesisHeader(cfg, uint32(c.Uint("bits")))

	node, err := consensus.New(cfg, db, deps, genesisHeader)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed constructing consensus: %v", err), 1)
	}

	log.WithFields(logrus.Fields{
		"k":           cfg.K,
		"network-tag": cfg.NetworkTag,
		"db-path":     c.String("db-path"),
	}).Info("consensus core started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.WithField("signal", sig.String()).Info("received signal, shutting down")

	node.Shutdown()
	log.Info("shutdown complete")
	return nil
}

// openDataAccessor returns a LevelDBAccessor rooted at path, or an ephemeral
// MemoryAccessor when path is empty -- the same in-memory-vs-on-disk split
// every store's constructor in this core is written against.
func openDataAccessor(path string) (database.DataAccessor, error) {
	if path == "" {
		return database.NewMemoryAccessor(), nil
	}
	return database.NewLevelDBAccessor(path)
}

// buildGenesisHeader constructs the fixed genesis header for a fresh
// network: no parents, a single level-0 entry, and a Merkle root computed
// over the genesis coinbase transaction so ValidateBodyInIsolation accepts
// it once bodyprocessor.ProcessGenesisIfNeeded commits the body.
func buildGenesisHeader(cfg *config.Config, bits uint32) *externalapi.DomainBlockHeader {
	coinbaseManager := coinbasemanager.New(cfg)
	genesisCoinbase := coinbaseManager.GenesisCoinbaseTransaction()
	merkleRoot := blockvalidator.ComputeHashMerkleRoot([]*externalapi.DomainTransaction{genesisCoinbase})

	return &externalapi.DomainBlockHeader{
		Version:              0,
		ParentsByLevel:       [][]*externalapi.DomainHash{{}},
		HashMerkleRoot:       merkleRoot,
		AcceptedIDMerkleRoot: externalapi.DomainHash{},
		UTXOCommitment:       externalapi.DomainHash{},
		TimeInMilliseconds:   cfg.GenesisTimeInMilliseconds,
		Bits:                 bits,
		Nonce:                0,
		DAAScore:             0,
		BlueWork:             config.BlueWorkFromBits(bits),
		BlueScore:            0,
		PruningPoint:         externalapi.DomainHash{},
	}
}
