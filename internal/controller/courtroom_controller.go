package controller

import (
	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/pkg/serverutils"
	"legal-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICourtroomController interface {
	RegisterRoutes(r fiber.Router)
	StartRoom(ctx *fiber.Ctx) error
	ListContacts(ctx *fiber.Ctx) error
	ListRoomMessages(ctx *fiber.Ctx) error
	SendRoomMessage(ctx *fiber.Ctx) error
}

type courtroomController struct {
	courtroomService service.ICourtroomService
}

func NewCourtroomController(courtroomService service.ICourtroomService) ICourtroomController {
	return &courtroomController{
		courtroomService: courtroomService,
	}
}

func (c *courtroomController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/courtroom/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("contacts", c.ListContacts)
	h.Post("rooms", c.StartRoom)
	h.Get("rooms/:id/messages", c.ListRoomMessages)
	h.Post("rooms/:id/messages", c.SendRoomMessage)
}

func (c *courtroomController) StartRoom(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.StartRoomRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.courtroomService.StartRoom(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start room", res))
}

func (c *courtroomController) ListContacts(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.courtroomService.GetContacts(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list contacts", res))
}

func (c *courtroomController) ListRoomMessages(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	roomId, _ := uuid.Parse(ctx.Params("id"))

	limit := ctx.QueryInt("limit", 0)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.courtroomService.GetRoomMessages(ctx.Context(), userId, roomId, limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list room messages", res))
}

func (c *courtroomController) SendRoomMessage(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	roomId, _ := uuid.Parse(ctx.Params("id"))

	var req dto.SendRoomMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.courtroomService.SendRoomMessage(ctx.Context(), userId, roomId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send room message", res))
}
