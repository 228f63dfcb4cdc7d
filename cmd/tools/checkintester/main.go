package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/neuroguard/backend/internal/analysis/crisis"
	"github.com/zhouzirui/neuroguard/backend/internal/analysis/risk"
	"github.com/zhouzirui/neuroguard/backend/internal/config"
	"github.com/zhouzirui/neuroguard/backend/internal/model/classification"
	"github.com/zhouzirui/neuroguard/backend/internal/service/classifier"
)

// checkintester runs texts through the configured classifier and the risk
// aggregator, treating them as one session in input order.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] could not load .env, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	text := flag.String("text", "", "single check-in text")
	file := flag.String("file", "", "file with one check-in per line")
	provider := flag.String("provider", "", "override CLASSIFIER_PROVIDER")
	parallel := flag.Int("parallel", 4, "concurrent classifier calls")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")

	flag.Parse()

	texts, err := collectTexts(*text, *file)
	if err != nil {
		log.Fatal(err)
	}
	if len(texts) == 0 {
		flag.Usage()
		log.Fatal("provide -text or -file")
	}

	if *provider != "" {
		cfg.Classifier.Provider = strings.ToLower(*provider)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c, err := classifier.FromConfig(ctx, cfg.Classifier)
	if err != nil {
		log.Fatalf("failed to create classifier: %v", err)
	}
	log.Printf("classifier=%s texts=%d", c.Name(), len(texts))

	outcomes, err := classifyAll(ctx, c, texts, *parallel)
	if err != nil {
		log.Fatalf("classification aborted: %v", err)
	}

	aggregator := risk.New(cfg.Risk.NegativeEmotions...)
	detector := crisis.New(cfg.Risk.CrisisPhrases...)

	var history []string
	for i, outcome := range outcomes {
		result, ok := outcome.Result()
		if !ok {
			fmt.Printf("%3d  FAILED(%s)  %q\n", i+1, outcome.Reason(), texts[i])
			continue
		}
		score := aggregator.Score(result.Label, result.Confidence, history)
		history = append(history, result.Label)

		marker := ""
		if detector.Detect(texts[i]) {
			marker = "  CRISIS"
		}
		fmt.Printf("%3d  %-9s %.2f  score=%5.1f  risk=%-8s%s  %q\n",
			i+1, result.Label, result.Confidence, score, risk.LevelFor(score), marker, texts[i])
	}
}

func collectTexts(text, file string) ([]string, error) {
	var texts []string
	if strings.TrimSpace(text) != "" {
		texts = append(texts, text)
	}
	if file == "" {
		return texts, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return texts, nil
}

// classifyAll classifies concurrently but keeps outcomes in input order.
func classifyAll(ctx context.Context, c classifier.Classifier, texts []string, parallel int) ([]classification.Outcome, error) {
	if parallel < 1 {
		parallel = 1
	}
	outcomes := make([]classification.Outcome, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			outcomes[i] = c.Classify(gctx, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, ctx.Err()
}
