package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/funny-falcon/runlen/runlen"
	"github.com/funny-falcon/runlen/slab"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if logger, err = newLogger(cfg.Debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	counter, err := cfg.Counter()
	if err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	logger.Info("self check",
		zap.Int("length", runlen.SelfCheckLen),
		zap.Uint64s("counts", runlen.SelfCheck()))

	if cfg.Data != "" {
		load(cfg, counter)
	}
	if cfg.OnlyLoad {
		return
	}

	svc := NewService(counter, &slab.Pool{}, cfg.Trim)
	defer svc.Close()
	logger.Info("listening",
		zap.String("port", cfg.Port),
		zap.Uint32("weight", counter.Weight),
		zap.Stringer("policy", counter.Policy))
	if err := fasthttp.ListenAndServe(":"+cfg.Port, svc.Handler); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

func load(cfg *Config, counter runlen.Counter) {
	var dump io.Writer
	if cfg.Dump != "" {
		f, err := os.Create(cfg.Dump)
		if err != nil {
			logger.Fatal("create dump", zap.Error(err))
		}
		defer f.Close()
		buf := bufio.NewWriterSize(f, 128*1024)
		defer buf.Flush()
		dump = buf
	}

	st, err := Load(cfg.Data, counter, dump)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("no data to load", zap.String("data", cfg.Data))
		return
	}
	if err != nil {
		logger.Fatal("load", zap.String("data", cfg.Data), zap.Error(err))
	}
	logger.Info("loaded",
		zap.String("data", cfg.Data),
		zap.Int("files", st.Files),
		zap.Int("sequences", st.Sequences),
		zap.Int("values", st.Values),
		zap.Int("runs", st.Runs),
		zap.Uint64("sum", st.Sum))
}
