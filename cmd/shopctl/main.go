// Command shopctl is a terminal front end to the shop API: order tracking for
// customers and a few admin actions.
//
//	shopctl track [-grpc] <tracking-number>
//	shopctl verify <token>
//	shopctl orders [-search term] [-status status] [-page n]
//	shopctl set-status [-yes] <transaction-id> <status>
//	shopctl watch
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rl1809/micro-shop/internal/adapter/handler"
	"github.com/rl1809/micro-shop/internal/client"
	"github.com/rl1809/micro-shop/internal/config"
	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/dashboard"
	"github.com/rl1809/micro-shop/internal/storefront"
)

var errUsage = errors.New("usage: shopctl track|verify|orders|set-status|watch [flags] [args]")

type cli struct {
	cfg    *config.Config
	stdin  *bufio.Reader
	stdout io.Writer
}

func main() {
	log.SetFlags(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{cfg: cfg, stdin: bufio.NewReader(os.Stdin), stdout: os.Stdout}
	if err := c.run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("shopctl: %v", err)
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "track":
		return c.track(ctx, args)
	case "verify":
		return c.verify(ctx, args)
	case "orders":
		return c.orders(ctx, args)
	case "set-status":
		return c.setStatus(ctx, args)
	case "watch":
		return c.watch(ctx)
	}
	return errUsage
}

func (c *cli) api() *client.Client {
	return client.New(c.cfg.APIURL, client.WithToken(c.cfg.AdminToken))
}

func (c *cli) admin(ctx context.Context) (*dashboard.Dashboard, error) {
	if c.cfg.AdminToken == "" {
		return nil, errors.New("SHOP_ADMIN_TOKEN is not set")
	}
	d := dashboard.New(client.New(c.cfg.APIURL))
	if err := d.Login(ctx, c.cfg.AdminToken); err != nil {
		if msg := d.Message(); msg != nil {
			return nil, fmt.Errorf("%s: %w", msg.Content, err)
		}
		return nil, err
	}
	return d, nil
}

func (c *cli) track(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("track", flag.ContinueOnError)
	useGRPC := fs.Bool("grpc", false, "look the order up over gRPC at GRPC_ADDR")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: shopctl track [-grpc] <tracking-number>")
	}
	number := fs.Arg(0)

	if *useGRPC {
		return c.trackGRPC(ctx, number)
	}

	shop := storefront.New(c.api(), nil)
	order, err := shop.TrackOrder(ctx, number)
	if err != nil {
		return fmt.Errorf("%s: %w", shop.Message().Content, err)
	}
	tx := order.Transaction
	fmt.Fprintf(c.stdout, "Order %s placed %s\n", tx.TrackingNumber, tx.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(c.stdout, "Total: %s\n", tx.TotalAmount)
	printTimeline(c.stdout, order.Timeline)
	return nil
}

func (c *cli) trackGRPC(ctx context.Context, number string) error {
	conn, err := grpc.NewClient(c.cfg.GRPCTarget(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.GRPCTarget(), err)
	}
	defer conn.Close()

	resp, err := handler.NewOrderTrackingClient(conn).TrackOrder(ctx, &handler.TrackOrderRequest{TrackingNumber: number})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Order %s placed %s\n", resp.TrackingNumber, resp.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(c.stdout, "Total: %s\n", resp.TotalAmount)
	printTimeline(c.stdout, resp.Timeline)
	return nil
}

func printTimeline(w io.Writer, t domain.Timeline) {
	if t.Cancelled {
		fmt.Fprintln(w, "Status: Cancelled")
		return
	}
	for _, stage := range t.Stages {
		marker := "  "
		if stage.Current {
			marker = "->"
		}
		fmt.Fprintf(w, "%s %s\n", marker, stage.Label)
	}
}

func (c *cli) verify(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: shopctl verify <token>")
	}
	valid, msg, err := client.New(c.cfg.APIURL).VerifyAdmin(ctx, args[0])
	if err != nil {
		return err
	}
	if valid {
		fmt.Fprintln(c.stdout, "valid")
		return nil
	}
	fmt.Fprintf(c.stdout, "invalid: %s\n", msg)
	return nil
}

func (c *cli) orders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	search := fs.String("search", "", "match name, email or tracking number")
	status := fs.String("status", "all", "only orders in this status")
	page := fs.Int("page", 1, "page to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d, err := c.admin(ctx)
	if err != nil {
		return err
	}
	if err := d.LoadTransactions(ctx); err != nil {
		return err
	}
	d.FilterTransactions(*search, *status)
	d.SetTransactionsPage(*page)

	p := d.TransactionsPage()
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTRACKING\tNAME\tTOTAL\tSTATUS")
	for _, tx := range p.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", tx.ID, tx.TrackingNumber, tx.Name, tx.TotalAmount, tx.Status.Label())
	}
	tw.Flush()
	fmt.Fprintf(c.stdout, "page %d of %d (%d orders)\n", p.Page, max(p.TotalPages, 1), p.TotalItems)
	return nil
}

func (c *cli) setStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-status", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: shopctl set-status [-yes] <transaction-id> <status>")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid transaction id %q", fs.Arg(0))
	}

	d, err := c.admin(ctx)
	if err != nil {
		return err
	}
	update := d.StatusUpdate()
	if err := update.Stage(id, fs.Arg(1)); err != nil {
		return err
	}

	change, _ := update.Pending()
	if !*yes && !c.confirm(fmt.Sprintf("Change order %d to %s?", change.ID, change.Status.Label())) {
		update.Cancel()
		fmt.Fprintln(c.stdout, "cancelled")
		return nil
	}

	tx, err := update.Confirm(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "order %d is now %s\n", tx.ID, tx.Status.Label())
	return nil
}

// confirm blocks for a y/N answer; anything but y or yes is a no.
func (c *cli) confirm(question string) bool {
	fmt.Fprintf(c.stdout, "%s [y/N] ", question)
	answer, _ := c.stdin.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func (c *cli) watch(ctx context.Context) error {
	if _, err := c.admin(ctx); err != nil {
		return err
	}
	err := c.api().WatchEvents(ctx, func(e domain.OrderEvent) {
		tx := e.Transaction
		if e.PreviousStatus != "" {
			fmt.Fprintf(c.stdout, "%s %s %s: %s -> %s\n", e.At.Format("15:04:05"), tx.TrackingNumber, e.Kind, e.PreviousStatus.Label(), tx.Status.Label())
			return
		}
		fmt.Fprintf(c.stdout, "%s %s %s: %s (%s)\n", e.At.Format("15:04:05"), tx.TrackingNumber, e.Kind, tx.Name, tx.TotalAmount)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
