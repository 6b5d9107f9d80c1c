// Command bookrev is a CLI client for the book-review service.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "bookrev")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "bookrev")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveTokens(tf tokenFile) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tf)
}

func loadTokens() (tokenFile, error) {
	var tf tokenFile
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return tf, err
	}
	if err := json.Unmarshal(b, &tf); err != nil {
		return tf, err
	}
	return tf, nil
}

// accessToken returns a stored, unexpired access token.
func accessToken() (string, error) {
	tf, err := loadTokens()
	if err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login or refresh required)")
	}
	return tf.AccessToken, nil
}

// ---- http ----

type apiError struct {
	Status int
	Msg    string
}

func (e *apiError) Error() string { return fmt.Sprintf("server: %d %s", e.Status, e.Msg) }

// call performs a JSON request and decodes the response into out (if non-nil).
func call(ctx context.Context, base, method, path string, body any, bearer, refreshCookie string, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if refreshCookie != "" {
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refreshCookie})
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &apiError{Status: resp.StatusCode, Msg: e.Error}
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `bookrev CLI
Usage:
  bookrev -addr URL <cmd> [args]

Commands:
  version
  signup     -u <email> -p <password>
  login      -u <email> -p <password>            (saves tokens)
  refresh                                        (new access token)
  books      [-author a] [-title t] [-limit n] [-offset n]
  add-book   -title t -author a [-desc d]
  review     -book <uuid> -rating 1..5 [-comment c]
  edit-review -id <uuid> -rating 1..5 [-comment c]
  rm-review  -id <uuid>
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the REST API.
func main() {
	// global flags
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("bookrev %s (%s)\n", version, buildDate)

	case "signup":
		fs := flag.NewFlagSet("signup", flag.ExitOnError)
		u := fs.String("u", "", "email")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if *u == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}
		var out struct {
			ID string `json:"id"`
		}
		if err := call(ctx, *addr, http.MethodPost, "/auth/signup",
			map[string]string{"email": *u, "password": *p}, "", "", &out); err != nil {
			fail(err)
		}
		fmt.Println(out.ID)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", "", "email")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if *u == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}
		tf, err := login(ctx, *addr, *u, *p)
		if err != nil {
			fail(err)
		}
		if err := saveTokens(tf); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "refresh":
		tf, err := loadTokens()
		if err != nil {
			fail(err)
		}
		if tf.RefreshToken == "" {
			fail(errors.New("no refresh token (login required)"))
		}
		var out struct {
			AccessToken string `json:"accessToken"`
		}
		if err := call(ctx, *addr, http.MethodPost, "/auth/refresh-token", nil, "", tf.RefreshToken, &out); err != nil {
			fail(err)
		}
		tf.AccessToken = out.AccessToken
		tf.ExpiresAt = time.Now().Add(time.Minute)
		if err := saveTokens(tf); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "books":
		fs := flag.NewFlagSet("books", flag.ExitOnError)
		author := fs.String("author", "", "filter by author")
		title := fs.String("title", "", "filter by title substring")
		limit := fs.Int("limit", 0, "page size")
		offset := fs.Int("offset", 0, "page offset")
		_ = fs.Parse(flag.Args()[1:])

		path := "/books?author=" + *author + "&title=" + *title +
			"&limit=" + strconv.Itoa(*limit) + "&offset=" + strconv.Itoa(*offset)
		var out map[string]any
		if err := call(ctx, *addr, http.MethodGet, path, nil, "", "", &out); err != nil {
			fail(err)
		}
		printJSON(out)

	case "add-book":
		fs := flag.NewFlagSet("add-book", flag.ExitOnError)
		title := fs.String("title", "", "title")
		author := fs.String("author", "", "author")
		desc := fs.String("desc", "", "description")
		_ = fs.Parse(flag.Args()[1:])
		if *title == "" || *author == "" {
			fmt.Fprintln(os.Stderr, "need -title and -author")
			os.Exit(1)
		}
		tok, err := accessToken()
		if err != nil {
			fail(err)
		}
		var out map[string]any
		if err := call(ctx, *addr, http.MethodPost, "/books",
			map[string]string{"title": *title, "author": *author, "description": *desc}, tok, "", &out); err != nil {
			fail(err)
		}
		printJSON(out)

	case "review":
		fs := flag.NewFlagSet("review", flag.ExitOnError)
		book := fs.String("book", "", "book id")
		rating := fs.Int("rating", 0, "rating 1..5")
		comment := fs.String("comment", "", "comment")
		_ = fs.Parse(flag.Args()[1:])
		if *book == "" || *rating == 0 {
			fmt.Fprintln(os.Stderr, "need -book and -rating")
			os.Exit(1)
		}
		tok, err := accessToken()
		if err != nil {
			fail(err)
		}
		var out map[string]any
		if err := call(ctx, *addr, http.MethodPost, "/books/"+*book+"/reviews",
			map[string]any{"rating": *rating, "comment": *comment}, tok, "", &out); err != nil {
			fail(err)
		}
		printJSON(out)

	case "edit-review":
		fs := flag.NewFlagSet("edit-review", flag.ExitOnError)
		id := fs.String("id", "", "review id")
		rating := fs.Int("rating", 0, "rating 1..5")
		comment := fs.String("comment", "", "comment")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" || *rating == 0 {
			fmt.Fprintln(os.Stderr, "need -id and -rating")
			os.Exit(1)
		}
		tok, err := accessToken()
		if err != nil {
			fail(err)
		}
		var out map[string]any
		if err := call(ctx, *addr, http.MethodPut, "/reviews/"+*id,
			map[string]any{"rating": *rating, "comment": *comment}, tok, "", &out); err != nil {
			fail(err)
		}
		printJSON(out)

	case "rm-review":
		fs := flag.NewFlagSet("rm-review", flag.ExitOnError)
		id := fs.String("id", "", "review id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		tok, err := accessToken()
		if err != nil {
			fail(err)
		}
		if err := call(ctx, *addr, http.MethodDelete, "/reviews/"+*id, nil, tok, "", nil); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	default:
		usage()
	}
}

// login authenticates and collects the access token plus the refresh cookie.
func login(ctx context.Context, base, email, password string) (tokenFile, error) {
	b, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return tokenFile{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/auth/login", bytes.NewReader(b))
	if err != nil {
		return tokenFile{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return tokenFile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return tokenFile{}, &apiError{Status: resp.StatusCode, Msg: e.Error}
	}

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return tokenFile{}, err
	}

	tf := tokenFile{
		AccessToken: out.AccessToken,
		ExpiresAt:   time.Now().Add(time.Minute),
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == "refreshToken" {
			tf.RefreshToken = ck.Value
		}
	}
	return tf, nil
}
