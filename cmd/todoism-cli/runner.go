// ABOUTME: Subcommand dispatch for todoism-cli
// ABOUTME: Each command returns an exit code: 0 ok, 1 error, 2 usage

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"

	"github.com/2389/todoism/internal/client"
)

var (
	successColor = color.New(color.FgGreen)
	pendingColor = color.New(color.FgYellow)
	accentColor  = color.New(color.FgBlue)
	mutedColor   = color.New(color.Faint)
	errorColor   = color.New(color.FgRed, color.Bold)
	titleColor   = color.New(color.Bold)
	doneColor    = color.New(color.Faint, color.CrossedOut)
)

const (
	boxChecked   = "☑"
	boxUnchecked = "☐"
)

type runner struct {
	c      *client.Client
	out    io.Writer
	errOut io.Writer
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	r := &runner{
		c:      client.New(serverURL(), client.LoadToken()),
		out:    out,
		errOut: errOut,
	}

	if len(args) == 0 {
		r.printHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		r.printHelp()
		return 0

	case "login":
		if len(a) != 2 {
			return r.usage("todoism-cli login <username> <password>")
		}
		return r.doLogin(ctx, a[0], a[1])

	case "me":
		return r.doMe(ctx)

	case "ls":
		return r.doList(ctx, a)

	case "add":
		if len(a) == 0 {
			return r.usage("todoism-cli add <body...>")
		}
		return r.doAdd(ctx, strings.Join(a, " "))

	case "edit":
		if len(a) < 2 {
			return r.usage("todoism-cli edit <id> <body...>")
		}
		id, ok := r.parseID("edit", a[0])
		if !ok {
			return 2
		}
		return r.doEdit(ctx, id, strings.Join(a[1:], " "))

	case "toggle", "rm":
		if len(a) != 1 {
			return r.usage("todoism-cli " + cmd + " <id>")
		}
		id, ok := r.parseID(cmd, a[0])
		if !ok {
			return 2
		}
		if cmd == "toggle" {
			return r.doToggle(ctx, id)
		}
		return r.doRemove(ctx, id)

	case "clear":
		return r.doClear(ctx)

	case "raw":
		return r.doRaw(ctx, a)
	}

	r.fail("unknown subcommand: " + cmd)
	fmt.Fprintln(r.errOut)
	r.printHelp()
	return 2
}

func (r *runner) printHelp() {
	fmt.Fprintf(r.out, `todoism-cli - talk to a todoism server

Usage:
  todoism-cli <subcommand> [args]

Subcommands:
  login <username> <password>       Exchange credentials for a token and save it
  me                                Show the current user and item counts
  ls [all|active|completed] [--page N]
                                    List items
  add <body...>                     Add a new item
  edit <id> <body...>               Replace an item's body
  toggle <id>                       Flip an item between active and completed
  rm <id>                           Delete an item
  clear                             Delete all completed items
  raw <METHOD> <path> [--data JSON] [--query PATH]
                                    Call the API directly; --query extracts a gjson path

Environment:
  %s       Server URL (default: %s)
  %s     Token to use instead of the saved one

Examples:
  todoism-cli login grey 123
  todoism-cli add "Buy milk"
  todoism-cli ls active
  todoism-cli raw GET /user/items --query "items.#.body"
`, URLEnv, defaultURL, client.TokenEnv)
}

func (r *runner) usage(line string) int {
	r.fail("usage: " + line)
	return 2
}

func (r *runner) ok(msg string) {
	fmt.Fprintln(r.out, successColor.Sprint("✔ "+msg))
}

func (r *runner) fail(msg string) {
	fmt.Fprintln(r.errOut, errorColor.Sprint("✖ "+msg))
}

// failErr reports err and returns the exit code for it.
func (r *runner) failErr(what string, err error) int {
	switch {
	case errors.Is(err, client.ErrNoToken):
		r.fail("not logged in: run todoism-cli login <username> <password>")
	case client.IsStatus(err, http.StatusUnauthorized):
		r.fail(what + ": token rejected, log in again")
	default:
		r.fail(what + ": " + err.Error())
	}
	return 1
}

func (r *runner) parseID(cmd, s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		r.fail(cmd + ": not an item id: " + s)
		return 0, false
	}
	return id, true
}

func (r *runner) doLogin(ctx context.Context, username, password string) int {
	token, ttl, err := r.c.Token(ctx, username, password)
	if err != nil {
		return r.failErr("login", err)
	}
	path, err := client.SaveToken(token)
	if err != nil {
		return r.failErr("login", err)
	}
	r.ok(fmt.Sprintf("logged in as %s (token valid for %s)", username, ttl))
	fmt.Fprintln(r.out, mutedColor.Sprint("  saved to "+path))
	return 0
}

func (r *runner) doMe(ctx context.Context) int {
	me, err := r.c.Me(ctx)
	if err != nil {
		return r.failErr("me", err)
	}
	fmt.Fprintf(r.out, "%s %s\n", titleColor.Sprint(me.Username), mutedColor.Sprint("("+me.ID+")"))
	fmt.Fprintln(r.out, r.counts(me.All, me.Active, me.Completed))
	return 0
}

func (r *runner) counts(all, active, completed int) string {
	return fmt.Sprintf("%s %d  %s %d  %s %d",
		successColor.Sprint("✔"), completed,
		pendingColor.Sprint("•"), active,
		accentColor.Sprint("Total"), all,
	)
}

func (r *runner) doList(ctx context.Context, args []string) int {
	filter := "all"
	page := 1
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "all" || arg == "active" || arg == "completed":
			filter = arg
		case arg == "--page" || strings.HasPrefix(arg, "--page="):
			raw, hasValue := strings.CutPrefix(arg, "--page=")
			if !hasValue {
				if i+1 >= len(args) {
					return r.usage("todoism-cli ls [all|active|completed] [--page N]")
				}
				i++
				raw = args[i]
			}
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				r.fail("ls: not a page number: " + raw)
				return 2
			}
			page = n
		default:
			return r.usage("todoism-cli ls [all|active|completed] [--page N]")
		}
	}

	coll, err := r.c.Items(ctx, filter, page, 0)
	if err != nil {
		return r.failErr("ls", err)
	}

	done := 0
	for _, it := range coll.Items {
		if it.Done {
			done++
		}
	}
	fmt.Fprintf(r.out, "%s  %s\n", titleColor.Sprint("Todos"), mutedColor.Sprintf("%s, page %d, %d total", filter, page, coll.Count))

	if len(coll.Items) == 0 {
		fmt.Fprintln(r.out, mutedColor.Sprint("  (nothing here)"))
	}
	for _, it := range coll.Items {
		fmt.Fprintln(r.out, itemLine(it))
	}

	var nav []string
	if coll.HasPrev {
		nav = append(nav, fmt.Sprintf("--page %d for previous", page-1))
	}
	if coll.HasNext {
		nav = append(nav, fmt.Sprintf("--page %d for more", page+1))
	}
	if len(nav) > 0 {
		fmt.Fprintln(r.out, mutedColor.Sprint("  "+strings.Join(nav, ", ")))
	}
	return 0
}

func itemLine(it client.Item) string {
	id := mutedColor.Sprintf("%4d", it.ID)
	if it.Done {
		return fmt.Sprintf("%s %s %s", id, successColor.Sprint(boxChecked), doneColor.Sprint(it.Body))
	}
	return fmt.Sprintf("%s %s %s", id, mutedColor.Sprint(boxUnchecked), it.Body)
}

func (r *runner) doAdd(ctx context.Context, body string) int {
	it, err := r.c.Create(ctx, body)
	if err != nil {
		return r.failErr("add", err)
	}
	r.ok(fmt.Sprintf("added #%d", it.ID))
	return 0
}

func (r *runner) doEdit(ctx context.Context, id int64, body string) int {
	if err := r.c.Edit(ctx, id, body); err != nil {
		return r.failErr("edit", err)
	}
	r.ok(fmt.Sprintf("edited #%d", id))
	return 0
}

func (r *runner) doToggle(ctx context.Context, id int64) int {
	if err := r.c.Toggle(ctx, id); err != nil {
		return r.failErr("toggle", err)
	}
	it, err := r.c.Get(ctx, id)
	if err != nil {
		return r.failErr("toggle", err)
	}
	state := "active"
	if it.Done {
		state = "completed"
	}
	r.ok(fmt.Sprintf("#%d is now %s", id, state))
	return 0
}

func (r *runner) doRemove(ctx context.Context, id int64) int {
	if err := r.c.Delete(ctx, id); err != nil {
		return r.failErr("rm", err)
	}
	r.ok(fmt.Sprintf("removed #%d", id))
	return 0
}

func (r *runner) doClear(ctx context.Context) int {
	if err := r.c.ClearCompleted(ctx); err != nil {
		return r.failErr("clear", err)
	}
	r.ok("cleared completed items")
	return 0
}

func (r *runner) doRaw(ctx context.Context, args []string) int {
	const usageLine = "todoism-cli raw <METHOD> <path> [--data JSON] [--query PATH]"
	if len(args) < 2 {
		return r.usage(usageLine)
	}
	method, path := strings.ToUpper(args[0]), args[1]
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var payload any
	var query string
	rest := args[2:]
	for i := 0; i < len(rest); i++ {
		if i+1 >= len(rest) {
			return r.usage(usageLine)
		}
		switch rest[i] {
		case "--data":
			if !gjson.Valid(rest[i+1]) {
				r.fail("raw: --data is not valid JSON")
				return 2
			}
			payload = gjson.Parse(rest[i+1]).Value()
		case "--query":
			query = rest[i+1]
		default:
			return r.usage(usageLine)
		}
		i++
	}

	body, err := r.c.Raw(ctx, method, path, payload)
	if err != nil {
		return r.failErr("raw", err)
	}
	if query == "" {
		fmt.Fprintln(r.out, strings.TrimSpace(string(body)))
		return 0
	}

	result := gjson.GetBytes(body, query)
	if !result.Exists() {
		r.fail("raw: no match for " + query)
		return 1
	}
	if result.IsArray() {
		for _, v := range result.Array() {
			fmt.Fprintln(r.out, v.String())
		}
		return 0
	}
	fmt.Fprintln(r.out, result.String())
	return 0
}
