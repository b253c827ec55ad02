package foto2pdf_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/olafgeibig/foto2pdf"
)

func ExampleProcessor_ProcessImages() {
	in, err := os.MkdirTemp("", "scans")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(in)
	out, err := os.MkdirTemp("", "pages")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(out)

	cfg := foto2pdf.DefaultConfig()
	cfg.WorkerCount = 2
	p, err := foto2pdf.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	results, err := p.ProcessImages(context.Background(), in, p.Options(out))
	if err != nil {
		log.Fatal(err)
	}
	s := foto2pdf.Summarize(foto2pdf.Collect(results))
	fmt.Printf("total=%d processed=%d skipped=%d errored=%d\n", s.Total, s.Success, s.Skipped, s.Errored)
	// Output: total=0 processed=0 skipped=0 errored=0
}
