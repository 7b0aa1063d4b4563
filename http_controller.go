package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// RefreshTokenHeader carries the refresh token on guarded and refresh requests
const RefreshTokenHeader = "X-Refresh-Token"

type AuthControllerRoutes struct {
	Register string
	Activate string
	Login    string
	Refresh  string
	Me       string
	Accounts string
	Logout   string
}

type AuthController struct {
	Debug    bool
	Logger   Logger
	Register *RegisterAccountHandler
	Activate *ActivateAccountHandler
	Auther   *Auther
	Routes   *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerDebug dumps payloads and responses
func WithControllerDebug(debug bool) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Debug = debug
		return ac
	}
}

// WithControllerLogger sets the controller logger
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		if logger != nil {
			ac.Logger = logger
		}
		return ac
	}
}

// WithControllerRoutes overrides the default paths
func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		if routes != nil {
			ac.Routes = routes
		}
		return ac
	}
}

func NewAuthController(
	register *RegisterAccountHandler,
	activate *ActivateAccountHandler,
	auther *Auther,
	opts ...AuthControllerOption,
) *AuthController {
	c := &AuthController{
		Logger:   defLogger{},
		Register: register,
		Activate: activate,
		Auther:   auther,
		Routes: &AuthControllerRoutes{
			Register: "/register",
			Activate: "/activate",
			Login:    "/login",
			Refresh:  "/refresh",
			Me:       "/me",
			Accounts: "/accounts",
			Logout:   "/logout",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Register == nil || c.Activate == nil {
		panic("Missing account handlers in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	return c
}

// RegisterRoutes mounts the controller on app. guard must attach a
// SessionContext to the user context, see middleware/jwtware.
func RegisterRoutes(app fiber.Router, controller *AuthController, guard fiber.Handler) {
	app.Post(controller.Routes.Register, controller.RegisterPost).Name("register.post")
	app.Post(controller.Routes.Activate, controller.ActivatePost).Name("activate.post")
	app.Post(controller.Routes.Login, controller.LoginPost).Name("sign-in.post")
	app.Post(controller.Routes.Refresh, controller.RefreshPost).Name("refresh.post")
	app.Get(controller.Routes.Me, guard, controller.MeGet).Name("me.get")
	app.Get(controller.Routes.Accounts, guard, controller.AccountsGet).Name("accounts.get")
	app.Post(controller.Routes.Logout, guard, controller.LogoutPost).Name("sign-out.post")
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := RegisterAccountMessage{}
	if err := c.BodyParser(&payload); err != nil {
		return a.errorResponse(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	a.dump("REGISTER", RegisterAccountMessage{
		Name:        payload.Name,
		Email:       payload.Email,
		PhoneNumber: payload.PhoneNumber,
	})

	res, err := a.Register.Handle(c.UserContext(), payload)
	if err != nil {
		return a.errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(res)
}

func (a *AuthController) ActivatePost(c *fiber.Ctx) error {
	payload := ActivateAccountMessage{}
	if err := c.BodyParser(&payload); err != nil {
		return a.errorResponse(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	res, err := a.Activate.Handle(c.UserContext(), payload)
	if err != nil {
		return a.errorResponse(c, err)
	}

	a.dump("ACTIVATE", res)

	return c.Status(fiber.StatusCreated).JSON(res)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := LoginRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return a.errorResponse(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.errorResponse(c, err)
	}

	res, err := a.Auther.Login(c.UserContext(), payload)
	if err != nil {
		return a.errorResponse(c, err)
	}

	if !res.Succeeded() {
		return c.Status(fiber.StatusUnauthorized).JSON(res)
	}

	return c.JSON(res)
}

func (a *AuthController) RefreshPost(c *fiber.Ctx) error {
	payload := struct {
		RefreshToken string `json:"refresh_token"`
	}{}

	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return a.errorResponse(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
		}
	}

	if payload.RefreshToken == "" {
		payload.RefreshToken = c.Get(RefreshTokenHeader)
	}

	if payload.RefreshToken == "" {
		return a.errorResponse(c, NewValidationError(map[string]string{
			"refresh_token": "Refresh token is required.",
		}))
	}

	pair, err := a.Auther.Refresh(c.UserContext(), payload.RefreshToken)
	if err != nil {
		return a.errorResponse(c, err)
	}

	return c.JSON(pair)
}

func (a *AuthController) MeGet(c *fiber.Ctx) error {
	res := GetCurrentSession(c.UserContext())
	if res.Account == nil {
		return a.errorResponse(c, ErrUnableToFindSession)
	}
	return c.JSON(res)
}

// AccountsResponse lists accounts, password hashes are never serialized
type AccountsResponse struct {
	Accounts []*Account `json:"accounts"`
}

func (a *AuthController) AccountsGet(c *fiber.Ctx) error {
	accounts, err := a.Auther.ListAccounts(c.UserContext())
	if err != nil {
		return a.errorResponse(c, err)
	}
	return c.JSON(AccountsResponse{Accounts: accounts})
}

func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	return c.JSON(a.Auther.Logout(c.UserContext()))
}

func (a *AuthController) dump(label string, v any) {
	if !a.Debug {
		return
	}
	fmt.Println("======= ACCOUNTS " + label + " ======")
	fmt.Println(print.MaybePrettyJSON(v))
	fmt.Println(strings.Repeat("=", len(label)+24))
}

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message  string         `json:"message"`
	TextCode string         `json:"text_code,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
}

func (a *AuthController) errorResponse(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred")
	}

	status := StatusForError(richErr)

	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("request failed",
			"path", c.OriginalURL(),
			"error", err,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
		return c.Status(status).JSON(ErrorBody{Error: ErrorDetail{
			Message:  "An unexpected server error occurred",
			TextCode: richErr.TextCode,
		}})
	}

	a.Logger.Debug("request rejected",
		"path", c.OriginalURL(),
		"error", richErr.Message,
		"text_code", richErr.TextCode,
	)

	body := ErrorBody{Error: ErrorDetail{
		Message:  richErr.Message,
		TextCode: richErr.TextCode,
	}}

	if richErr.Category == goerrors.CategoryValidation {
		body.Error.Fields = richErr.Metadata
	}

	return c.Status(status).JSON(body)
}

// StatusForError maps an error category to an HTTP status code
func StatusForError(richErr *goerrors.Error) int {
	if richErr == nil {
		return fiber.StatusInternalServerError
	}

	switch richErr.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
