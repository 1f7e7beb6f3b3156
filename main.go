package main

import (
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"runtime"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"picpal/convert"
	"picpal/parallel"
	"picpal/unpack"
)

type CLI struct {
	Threads  int        `help:"Number of files processed in parallel, also the shared budget of row workers. 0 uses every CPU." default:"0"`
	LogLevel slog.Level `help:"Log level (debug, info, warn, error)" default:"info"`

	Convert convert.CLICmd `cmd:"" help:"Reduce pictures to 16-color SAFB bitmaps"`
	Unpack  unpack.CLICmd  `cmd:"" help:"Decode SAFB bitmaps back to pictures or palettes"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("picpal"),
		kong.Description("Palette reduction for 4-bit indexed displays."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, "~/.config/picpal.json", "picpal.json"),
	)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cli.LogLevel})))

	if cli.Threads > 0 {
		runtime.GOMAXPROCS(cli.Threads)
	}
	parallel.SetRowWorkers(cli.Threads)

	pool := parallel.Start(cli.Threads)
	err := kctx.Run(pool.Do, pool.Wait, kctx.Selected().Name)
	kctx.FatalIfErrorf(err)
}
