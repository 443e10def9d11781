package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/knpstore/sport-store/internal/apiclient"
	"github.com/knpstore/sport-store/internal/overlay"
	"github.com/knpstore/sport-store/internal/storefront"
	"github.com/knpstore/sport-store/internal/validation"
)

const help = `commands:
  list                      show loaded products
  more                      scroll to the end of the list
  cart <id>                 add a product to the cart
  search <text>             text search
  login                     open the sign-in overlay
  signin <email> <password> sign in
  signup <email> <password> <confirm> <full name>
  toggle                    switch between sign-in and sign-up
  info <1|0|2> <YYYY-MM-DD> send gender (1 male, 0 female, 2 other) and birth date
  skip                      skip the additional info prompt
  image <file>              pick an image for image search
  find                      run the image search
  social <provider>         sign in with google, facebook, github or apple
  close                     close the active overlay
  form <field> <value>      edit the registration page
  submit                    submit the registration page
  whoami                    show the signed-in user
  logout                    sign out
  quit`

type terminal struct {
	store *storefront.Storefront
	out   io.Writer
	shown int
}

// syncWriter serializes writes from the input loop and from overlay
// transitions fired by timers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

// exec runs one command line and reports whether the user asked to quit.
func (t *terminal) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]
	s := t.store

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(t.out, help)
	case "list":
		t.renderCards(0)
	case "more":
		if !s.Products.Intersect(ctx) {
			fmt.Fprintln(t.out, "no more products")
			break
		}
		s.Products.Wait()
		if err := s.Products.Err(); err != nil {
			fmt.Fprintln(t.out, "could not load products:", apiclient.Message(err))
		}
		t.renderCards(t.shown)
	case "cart":
		id, err := strconv.Atoi(arg(args, 0))
		if err != nil {
			fmt.Fprintln(t.out, "usage: cart <id>")
			break
		}
		if s.AddToCart(id) {
			fmt.Fprintln(t.out, "added to cart:", id)
		}
	case "search":
		s.Header.Search(strings.Join(args, " "))
	case "login":
		s.Header.SignIn()
	case "signin":
		_ = s.Overlays.SubmitLogin(ctx, arg(args, 0), arg(args, 1))
	case "signup":
		form := validation.RegistrationForm{
			Email:           arg(args, 0),
			Password:        arg(args, 1),
			ConfirmPassword: arg(args, 2),
		}
		if len(args) > 3 {
			form.FullName = strings.Join(args[3:], " ")
		}
		_, _ = s.Overlays.SubmitRegister(ctx, form)
	case "toggle":
		s.Overlays.ToggleMode()
	case "info":
		_ = s.Overlays.SubmitAdditionalInfo(ctx, arg(args, 0), arg(args, 1))
	case "skip":
		s.Overlays.SkipAdditionalInfo()
	case "image":
		path := arg(args, 0)
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(t.out, "cannot read file:", err)
			break
		}
		s.Overlays.OpenImageSearch()
		_ = s.Overlays.SelectImage(filepath.Base(path), data)
	case "find":
		if err := s.Overlays.SearchImage(); err != nil {
			fmt.Fprintln(t.out, "pick an image first")
		}
	case "social":
		s.Overlays.SocialLogin(arg(args, 0))
	case "close":
		s.Overlays.Close()
	case "form":
		if err := s.Register.Change(arg(args, 0), strings.Join(args[min(1, len(args)):], " ")); err != nil {
			fmt.Fprintln(t.out, err)
		}
	case "submit":
		_, _ = s.Register.Submit(ctx)
		t.renderRegister()
	case "whoami":
		if sess, ok := s.Overlays.Session(); ok {
			fmt.Fprintf(t.out, "%s <%s>\n", sess.User.FullName, sess.User.Email)
		} else {
			fmt.Fprintln(t.out, "not signed in")
		}
	case "logout":
		if err := s.Overlays.SignOut(); err != nil {
			fmt.Fprintln(t.out, "sign out failed:", err)
		}
	default:
		fmt.Fprintf(t.out, "unknown command %q, try 'help'\n", cmd)
	}
	return false
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func (t *terminal) renderCards(from int) {
	cards := t.store.Cards()
	w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	for _, c := range cards[min(from, len(cards)):] {
		fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t-%d%%\t★ %s\t%s\t%s\n",
			c.ID, c.Name, c.Price, c.ListPrice, c.Discount, c.Rating, c.SoldLabel, c.Category)
	}
	w.Flush()
	t.shown = len(cards)
	if !t.store.Products.HasMore() {
		fmt.Fprintln(t.out, "-- end of catalogue --")
	}
}

func (t *terminal) renderOverlay(o overlay.Overlay) {
	switch o.Kind {
	case overlay.KindLogin:
		fmt.Fprintf(t.out, "[%s]\n", o.Mode)
		for field, msg := range o.FieldErrors {
			fmt.Fprintf(t.out, "  %s: %s\n", field, msg)
		}
	case overlay.KindError:
		fmt.Fprintf(t.out, "[error] %s (close to go back)\n", o.Message)
	case overlay.KindAdditionalInfo:
		fmt.Fprintln(t.out, "[additional info] info <1|0|2> <YYYY-MM-DD> or skip")
		if o.InlineError != "" {
			fmt.Fprintln(t.out, "  "+o.InlineError)
		}
	case overlay.KindImageSearch:
		fmt.Fprintln(t.out, "[image search]")
		if o.Image != nil {
			fmt.Fprintf(t.out, "  %s (%s, %d bytes)\n", o.Image.Name, o.Image.ContentType, o.Image.Size)
		}
		if o.InlineError != "" {
			fmt.Fprintln(t.out, "  "+o.InlineError)
		}
	}
}

func (t *terminal) renderRegister() {
	p := t.store.Register
	if msg := p.Success(); msg != "" {
		fmt.Fprintln(t.out, msg)
		return
	}
	for field, msg := range p.Errors() {
		fmt.Fprintf(t.out, "  %s: %s\n", field, msg)
	}
}
