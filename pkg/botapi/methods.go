package botapi

import (
	"bytes"
	"context"
	"net/http"
)

// SendMessage sends a text message to the specified chat.
func (c *Client) SendMessage(ctx context.Context, chatID ChatID, text string, opts Options) (*Message, error) {
	return call[*Message](ctx, c, http.MethodPost, "sendMessage", Params{
		"chat_id": chatID,
		"text":    text,
	}, opts)
}

// SendChatAction sends a chat action (e.g., "typing") to the specified chat.
func (c *Client) SendChatAction(ctx context.Context, chatID ChatID, action string) error {
	_, err := c.Call(ctx, http.MethodPost, "sendChatAction", Params{
		"chat_id": chatID,
		"action":  action,
	}, nil)
	return err
}

// ForwardMessage forwards a message from one chat to another.
func (c *Client) ForwardMessage(ctx context.Context, chatID, fromChatID ChatID, messageID int) (*Message, error) {
	return call[*Message](ctx, c, http.MethodPost, "forwardMessage", Params{
		"chat_id":      chatID,
		"from_chat_id": fromChatID,
		"message_id":   messageID,
	}, nil)
}

// SendLocation sends a point on the map.
func (c *Client) SendLocation(ctx context.Context, chatID ChatID, latitude, longitude float64, opts Options) (*Message, error) {
	return call[*Message](ctx, c, http.MethodPost, "sendLocation", Params{
		"chat_id":   chatID,
		"latitude":  latitude,
		"longitude": longitude,
	}, opts)
}

// SendVenue sends information about a venue.
func (c *Client) SendVenue(ctx context.Context, chatID ChatID, latitude, longitude float64, title, address string, opts Options) (*Message, error) {
	return call[*Message](ctx, c, http.MethodPost, "sendVenue", Params{
		"chat_id":   chatID,
		"latitude":  latitude,
		"longitude": longitude,
		"title":     title,
		"address":   address,
	}, opts)
}

// SendContact sends a phone contact.
func (c *Client) SendContact(ctx context.Context, chatID ChatID, phoneNumber, firstName string, opts Options) (*Message, error) {
	return call[*Message](ctx, c, http.MethodPost, "sendContact", Params{
		"chat_id":      chatID,
		"phone_number": phoneNumber,
		"first_name":   firstName,
	}, opts)
}

// SendPhoto sends a photo to the specified chat.
func (c *Client) SendPhoto(ctx context.Context, chatID ChatID, photo InputFile, opts Options) (*Message, error) {
	return c.SendMedia(ctx, MediaRequest{Kind: MediaPhoto, ChatID: chatID, File: photo, Options: opts})
}

// SendAudio sends an audio file to the specified chat.
func (c *Client) SendAudio(ctx context.Context, chatID ChatID, audio InputFile, opts Options) (*Message, error) {
	return c.SendMedia(ctx, MediaRequest{Kind: MediaAudio, ChatID: chatID, File: audio, Options: opts})
}

// SendVoice sends a voice message to the specified chat.
func (c *Client) SendVoice(ctx context.Context, chatID ChatID, voice InputFile, opts Options) (*Message, error) {
	return c.SendMedia(ctx, MediaRequest{Kind: MediaVoice, ChatID: chatID, File: voice, Options: opts})
}

// SendSticker sends a sticker to the specified chat.
func (c *Client) SendSticker(ctx context.Context, chatID ChatID, sticker InputFile, opts Options) (*Message, error) {
	return c.SendMedia(ctx, MediaRequest{Kind: MediaSticker, ChatID: chatID, File: sticker, Options: opts})
}

// SendDocument sends a document to the specified chat.
func (c *Client) SendDocument(ctx context.Context, chatID ChatID, document InputFile, opts Options) (*Message, error) {
	return c.SendMedia(ctx, MediaRequest{Kind: MediaDocument, ChatID: chatID, File: document, Options: opts})
}

// SendVideo sends a video to the specified chat.
func (c *Client) SendVideo(ctx context.Context, chatID ChatID, video InputFile, opts Options) (*Message, error) {
	return c.SendMedia(ctx, MediaRequest{Kind: MediaVideo, ChatID: chatID, File: video, Options: opts})
}

// EditMessageText edits the text of a message. Inline edits return a nil
// message.
func (c *Client) EditMessageText(ctx context.Context, ref MessageRef, text string, opts Options) (*Message, error) {
	return c.edit(ctx, MethodEditMessageText, ref, Params{"text": text}, opts)
}

// EditMessageCaption edits the caption of a message. Inline edits return a
// nil message.
func (c *Client) EditMessageCaption(ctx context.Context, ref MessageRef, caption string, opts Options) (*Message, error) {
	return c.edit(ctx, MethodEditMessageCaption, ref, Params{"caption": caption}, opts)
}

// EditMessageReplyMarkup edits the inline keyboard of a message, passed as
// opts["reply_markup"]. Inline edits return a nil message.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, ref MessageRef, opts Options) (*Message, error) {
	return c.edit(ctx, MethodEditMessageReplyMarkup, ref, nil, opts)
}

// EditMessageArgs dispatches an edit method from positional arguments, see
// ResolveEditArgs. Unresolvable arguments fail with a *ShapeError and no
// request is made.
func (c *Client) EditMessageArgs(ctx context.Context, method string, args ...any) (*Message, error) {
	payload, opts, err := ResolveEditArgs(method, args...)
	if err != nil {
		c.rejectShape(ctx, method, err)
		return nil, err
	}
	resp, err := c.Call(ctx, http.MethodPost, method, payload, opts)
	if err != nil {
		return nil, err
	}
	return decodeEdited(method, resp)
}

func (c *Client) edit(ctx context.Context, method string, ref MessageRef, fields Params, opts Options) (*Message, error) {
	payload, err := ref.params(method)
	if err != nil {
		c.rejectShape(ctx, method, err)
		return nil, err
	}
	for k, v := range fields {
		payload[k] = v
	}
	resp, err := c.Call(ctx, http.MethodPost, method, payload, opts)
	if err != nil {
		return nil, err
	}
	return decodeEdited(method, resp)
}

// rejectShape reports a call refused before reaching the network.
func (c *Client) rejectShape(ctx context.Context, method string, err error) {
	_, scope := c.begin(ctx, http.MethodPost, method)
	scope.end(err)
}

// decodeEdited decodes an edit result: the edited Message, or true for inline
// messages.
func decodeEdited(method string, resp *Response) (*Message, error) {
	if bytes.Equal(bytes.TrimSpace(resp.Result), []byte("true")) {
		return nil, nil
	}
	return decodeResult[*Message](method, resp)
}

// AnswerCallbackQuery answers a callback query sent from an inline keyboard.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string, opts Options) error {
	_, err := c.Call(ctx, http.MethodPost, "answerCallbackQuery", Params{
		"callback_query_id": callbackQueryID,
	}, opts)
	return err
}

// AnswerInlineQuery answers an inline query. results is sent as-is and must
// encode to a JSON array of InlineQueryResult objects.
func (c *Client) AnswerInlineQuery(ctx context.Context, inlineQueryID string, results any, opts Options) error {
	_, err := c.Call(ctx, http.MethodPost, "answerInlineQuery", Params{
		"inline_query_id": inlineQueryID,
		"results":         results,
	}, opts)
	return err
}

// GetUserProfilePhotos returns a user's profile pictures.
func (c *Client) GetUserProfilePhotos(ctx context.Context, userID int64, opts Options) (*UserProfilePhotos, error) {
	return call[*UserProfilePhotos](ctx, c, http.MethodGet, "getUserProfilePhotos", Params{
		"user_id": userID,
	}, opts)
}

// GetMe returns the bot's user information.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	return call[*User](ctx, c, http.MethodGet, "getMe", nil, nil)
}

// GetChat returns up-to-date information about a chat.
func (c *Client) GetChat(ctx context.Context, chatID ChatID) (*Chat, error) {
	return call[*Chat](ctx, c, http.MethodGet, "getChat", Params{"chat_id": chatID}, nil)
}

// GetChatAdministrators returns the administrators of a chat.
func (c *Client) GetChatAdministrators(ctx context.Context, chatID ChatID) ([]ChatMember, error) {
	return call[[]ChatMember](ctx, c, http.MethodGet, "getChatAdministrators", Params{"chat_id": chatID}, nil)
}

// GetChatMembersCount returns the number of members in a chat.
func (c *Client) GetChatMembersCount(ctx context.Context, chatID ChatID) (int, error) {
	return call[int](ctx, c, http.MethodGet, "getChatMembersCount", Params{"chat_id": chatID}, nil)
}

// GetChatMember returns information about one member of a chat.
func (c *Client) GetChatMember(ctx context.Context, chatID ChatID, userID int64) (*ChatMember, error) {
	return call[*ChatMember](ctx, c, http.MethodGet, "getChatMember", Params{
		"chat_id": chatID,
		"user_id": userID,
	}, nil)
}

// LeaveChat makes the bot leave a group, supergroup or channel.
func (c *Client) LeaveChat(ctx context.Context, chatID ChatID) error {
	_, err := c.Call(ctx, http.MethodGet, "leaveChat", Params{"chat_id": chatID}, nil)
	return err
}

// KickChatMember removes a user from a chat.
func (c *Client) KickChatMember(ctx context.Context, chatID ChatID, userID int64) error {
	_, err := c.Call(ctx, http.MethodPost, "kickChatMember", Params{
		"chat_id": chatID,
		"user_id": userID,
	}, nil)
	return err
}

// UnbanChatMember lifts a ban on a previously kicked user.
func (c *Client) UnbanChatMember(ctx context.Context, chatID ChatID, userID int64) error {
	_, err := c.Call(ctx, http.MethodPost, "unbanChatMember", Params{
		"chat_id": chatID,
		"user_id": userID,
	}, nil)
	return err
}

// SetWebhook configures the webhook URL for receiving updates. opts may carry
// secret_token, max_connections or allowed_updates.
func (c *Client) SetWebhook(ctx context.Context, url string, opts Options) error {
	_, err := c.Call(ctx, http.MethodPost, "setWebhook", Params{"url": url}, opts)
	return err
}

// DeleteWebhook removes the current webhook integration.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := c.Call(ctx, http.MethodPost, "deleteWebhook", nil, nil)
	return err
}

// GetUpdates fetches pending updates. opts are sent verbatim (offset, limit,
// timeout, allowed_updates).
func (c *Client) GetUpdates(ctx context.Context, opts Options) ([]Update, error) {
	return call[[]Update](ctx, c, http.MethodGet, "getUpdates", nil, opts)
}

// GetFile retrieves basic info about a file and prepares it for downloading.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	return call[*File](ctx, c, http.MethodGet, "getFile", Params{"file_id": fileID}, nil)
}

// FileURL returns the download URL for a file path returned by GetFile.
func (c *Client) FileURL(filePath string) string {
	return buildFileEndpoint(c.baseURL, c.token, filePath)
}
