package client

import (
	"context"

	"github.com/tavern-lab/backend/internal/model"
)

// Login stores the returned access token, later calls are authenticated
// with it.
func (c *Client) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	resp, err := post[model.LoginRequest, model.LoginResponse](ctx, c, "/login", req)
	if err != nil {
		return nil, err
	}

	c.SetAccessToken(resp.AccessToken)
	return resp, nil
}

func (c *Client) Refresh(ctx context.Context, req *model.RefreshTokenRequest) (*model.RefreshTokenResponse, error) {
	resp, err := c.refresh(ctx, req)
	if err != nil {
		return nil, err
	}

	c.SetAccessToken(resp.AccessToken)
	return resp, nil
}

func (c *Client) Logout(ctx context.Context, req *model.LogoutRequest) (*model.LogoutResponse, error) {
	resp, err := c.logout(ctx, req)
	if err != nil {
		return nil, err
	}

	c.SetAccessToken("")
	return resp, nil
}

func (c *Client) UploadMap(
	ctx context.Context, req *model.UploadMapRequest, filename string, data []byte,
) (*model.UploadMapResponse, error) {
	return upload[model.UploadMapRequest, model.UploadMapResponse](ctx, c, "/uploadMap", req, filename, data)
}

func (c *Client) UploadCharacterImage(
	ctx context.Context, req *model.UploadCharacterImageRequest, filename string, data []byte,
) (*model.UploadCharacterImageResponse, error) {
	return upload[model.UploadCharacterImageRequest, model.UploadCharacterImageResponse](
		ctx, c, "/uploadCharacterImage", req, filename, data)
}

func (c *Client) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error) {
	return post[model.RegisterRequest, model.RegisterResponse](ctx, c, "/register", req)
}

func (c *Client) refresh(
	ctx context.Context, req *model.RefreshTokenRequest,
) (*model.RefreshTokenResponse, error) {
	return post[model.RefreshTokenRequest, model.RefreshTokenResponse](ctx, c, "/refresh", req)
}

func (c *Client) logout(ctx context.Context, req *model.LogoutRequest) (*model.LogoutResponse, error) {
	return post[model.LogoutRequest, model.LogoutResponse](ctx, c, "/logout", req)
}

func (c *Client) GetMe(ctx context.Context, req *model.GetMeRequest) (*model.GetMeResponse, error) {
	return get[model.GetMeRequest, model.GetMeResponse](ctx, c, "/getMe", req)
}

func (c *Client) AssignRole(
	ctx context.Context, req *model.AssignRoleRequest,
) (*model.AssignRoleResponse, error) {
	return post[model.AssignRoleRequest, model.AssignRoleResponse](ctx, c, "/assignRole", req)
}

func (c *Client) CreateCharacter(
	ctx context.Context, req *model.CreateCharacterRequest,
) (*model.CreateCharacterResponse, error) {
	return post[model.CreateCharacterRequest, model.CreateCharacterResponse](ctx, c, "/createCharacter", req)
}

func (c *Client) GetMyCharacters(
	ctx context.Context, req *model.GetMyCharactersRequest,
) (*model.GetMyCharactersResponse, error) {
	return get[model.GetMyCharactersRequest, model.GetMyCharactersResponse](ctx, c, "/getMyCharacters", req)
}

func (c *Client) GetCharacter(
	ctx context.Context, req *model.GetCharacterRequest,
) (*model.GetCharacterResponse, error) {
	return get[model.GetCharacterRequest, model.GetCharacterResponse](ctx, c, "/getCharacter", req)
}

func (c *Client) UpdateCharacter(
	ctx context.Context, req *model.UpdateCharacterRequest,
) (*model.UpdateCharacterResponse, error) {
	return post[model.UpdateCharacterRequest, model.UpdateCharacterResponse](ctx, c, "/updateCharacter", req)
}

func (c *Client) DeleteCharacter(
	ctx context.Context, req *model.DeleteCharacterRequest,
) (*model.DeleteCharacterResponse, error) {
	return post[model.DeleteCharacterRequest, model.DeleteCharacterResponse](ctx, c, "/deleteCharacter", req)
}

func (c *Client) AdjustHP(ctx context.Context, req *model.AdjustHPRequest) (*model.AdjustHPResponse, error) {
	return post[model.AdjustHPRequest, model.AdjustHPResponse](ctx, c, "/adjustHP", req)
}

func (c *Client) SetStat(ctx context.Context, req *model.SetStatRequest) (*model.SetStatResponse, error) {
	return post[model.SetStatRequest, model.SetStatResponse](ctx, c, "/setStat", req)
}

func (c *Client) SaveAbility(
	ctx context.Context, req *model.SaveAbilityRequest,
) (*model.SaveAbilityResponse, error) {
	return post[model.SaveAbilityRequest, model.SaveAbilityResponse](ctx, c, "/saveAbility", req)
}

func (c *Client) DeleteAbility(
	ctx context.Context, req *model.DeleteAbilityRequest,
) (*model.DeleteAbilityResponse, error) {
	return post[model.DeleteAbilityRequest, model.DeleteAbilityResponse](ctx, c, "/deleteAbility", req)
}

func (c *Client) CreateItem(
	ctx context.Context, req *model.CreateItemRequest,
) (*model.CreateItemResponse, error) {
	return post[model.CreateItemRequest, model.CreateItemResponse](ctx, c, "/createItem", req)
}

func (c *Client) UpdateItem(
	ctx context.Context, req *model.UpdateItemRequest,
) (*model.UpdateItemResponse, error) {
	return post[model.UpdateItemRequest, model.UpdateItemResponse](ctx, c, "/updateItem", req)
}

func (c *Client) DeleteItem(
	ctx context.Context, req *model.DeleteItemRequest,
) (*model.DeleteItemResponse, error) {
	return post[model.DeleteItemRequest, model.DeleteItemResponse](ctx, c, "/deleteItem", req)
}

func (c *Client) GetInventory(
	ctx context.Context, req *model.GetInventoryRequest,
) (*model.GetInventoryResponse, error) {
	return get[model.GetInventoryRequest, model.GetInventoryResponse](ctx, c, "/getInventory", req)
}

func (c *Client) TransferItem(
	ctx context.Context, req *model.TransferItemRequest,
) (*model.TransferItemResponse, error) {
	return post[model.TransferItemRequest, model.TransferItemResponse](ctx, c, "/transferItem", req)
}

func (c *Client) CreateCampaign(
	ctx context.Context, req *model.CreateCampaignRequest,
) (*model.CreateCampaignResponse, error) {
	return post[model.CreateCampaignRequest, model.CreateCampaignResponse](ctx, c, "/createCampaign", req)
}

func (c *Client) GetMyCampaigns(
	ctx context.Context, req *model.GetMyCampaignsRequest,
) (*model.GetMyCampaignsResponse, error) {
	return get[model.GetMyCampaignsRequest, model.GetMyCampaignsResponse](ctx, c, "/getMyCampaigns", req)
}

func (c *Client) GetCampaign(
	ctx context.Context, req *model.GetCampaignRequest,
) (*model.GetCampaignResponse, error) {
	return get[model.GetCampaignRequest, model.GetCampaignResponse](ctx, c, "/getCampaign", req)
}

func (c *Client) JoinCampaign(
	ctx context.Context, req *model.JoinCampaignRequest,
) (*model.JoinCampaignResponse, error) {
	return post[model.JoinCampaignRequest, model.JoinCampaignResponse](ctx, c, "/joinCampaign", req)
}

func (c *Client) LeaveCampaign(
	ctx context.Context, req *model.LeaveCampaignRequest,
) (*model.LeaveCampaignResponse, error) {
	return post[model.LeaveCampaignRequest, model.LeaveCampaignResponse](ctx, c, "/leaveCampaign", req)
}

func (c *Client) UpdateCampaign(
	ctx context.Context, req *model.UpdateCampaignRequest,
) (*model.UpdateCampaignResponse, error) {
	return post[model.UpdateCampaignRequest, model.UpdateCampaignResponse](ctx, c, "/updateCampaign", req)
}

func (c *Client) AddEnemy(ctx context.Context, req *model.AddEnemyRequest) (*model.AddEnemyResponse, error) {
	return post[model.AddEnemyRequest, model.AddEnemyResponse](ctx, c, "/addEnemy", req)
}

func (c *Client) AdjustEnemyHP(
	ctx context.Context, req *model.AdjustEnemyHPRequest,
) (*model.AdjustEnemyHPResponse, error) {
	return post[model.AdjustEnemyHPRequest, model.AdjustEnemyHPResponse](ctx, c, "/adjustEnemyHP", req)
}

func (c *Client) RemoveEnemy(
	ctx context.Context, req *model.RemoveEnemyRequest,
) (*model.RemoveEnemyResponse, error) {
	return post[model.RemoveEnemyRequest, model.RemoveEnemyResponse](ctx, c, "/removeEnemy", req)
}

func (c *Client) ClearEnemies(
	ctx context.Context, req *model.ClearEnemiesRequest,
) (*model.ClearEnemiesResponse, error) {
	return post[model.ClearEnemiesRequest, model.ClearEnemiesResponse](ctx, c, "/clearEnemies", req)
}

func (c *Client) CreateRoom(
	ctx context.Context, req *model.CreateRoomRequest,
) (*model.CreateRoomResponse, error) {
	return post[model.CreateRoomRequest, model.CreateRoomResponse](ctx, c, "/createRoom", req)
}

func (c *Client) GetRoom(ctx context.Context, req *model.GetRoomRequest) (*model.GetRoomResponse, error) {
	return get[model.GetRoomRequest, model.GetRoomResponse](ctx, c, "/getRoom", req)
}

func (c *Client) JoinRoom(ctx context.Context, req *model.JoinRoomRequest) (*model.JoinRoomResponse, error) {
	return post[model.JoinRoomRequest, model.JoinRoomResponse](ctx, c, "/joinRoom", req)
}

func (c *Client) LeaveRoom(
	ctx context.Context, req *model.LeaveRoomRequest,
) (*model.LeaveRoomResponse, error) {
	return post[model.LeaveRoomRequest, model.LeaveRoomResponse](ctx, c, "/leaveRoom", req)
}

func (c *Client) GetRoomParticipants(
	ctx context.Context, req *model.GetRoomParticipantsRequest,
) (*model.GetRoomParticipantsResponse, error) {
	return get[model.GetRoomParticipantsRequest, model.GetRoomParticipantsResponse](ctx, c, "/getRoomParticipants", req)
}

func (c *Client) GetRoomLogs(
	ctx context.Context, req *model.GetRoomLogsRequest,
) (*model.GetRoomLogsResponse, error) {
	return get[model.GetRoomLogsRequest, model.GetRoomLogsResponse](ctx, c, "/getRoomLogs", req)
}

func (c *Client) RollDice(ctx context.Context, req *model.RollDiceRequest) (*model.RollDiceResponse, error) {
	return post[model.RollDiceRequest, model.RollDiceResponse](ctx, c, "/rollDice", req)
}

func (c *Client) RollInitiative(
	ctx context.Context, req *model.RollInitiativeRequest,
) (*model.RollInitiativeResponse, error) {
	return post[model.RollInitiativeRequest, model.RollInitiativeResponse](ctx, c, "/rollInitiative", req)
}

func (c *Client) ResetInitiative(
	ctx context.Context, req *model.ResetInitiativeRequest,
) (*model.ResetInitiativeResponse, error) {
	return post[model.ResetInitiativeRequest, model.ResetInitiativeResponse](ctx, c, "/resetInitiative", req)
}

func (c *Client) CreateRoomEnemy(
	ctx context.Context, req *model.CreateRoomEnemyRequest,
) (*model.CreateRoomEnemyResponse, error) {
	return post[model.CreateRoomEnemyRequest, model.CreateRoomEnemyResponse](ctx, c, "/createRoomEnemy", req)
}

func (c *Client) ClearMap(ctx context.Context, req *model.ClearMapRequest) (*model.ClearMapResponse, error) {
	return post[model.ClearMapRequest, model.ClearMapResponse](ctx, c, "/clearMap", req)
}

func (c *Client) CreateBadge(
	ctx context.Context, req *model.CreateBadgeRequest,
) (*model.CreateBadgeResponse, error) {
	return post[model.CreateBadgeRequest, model.CreateBadgeResponse](ctx, c, "/createBadge", req)
}

func (c *Client) GetBadges(
	ctx context.Context, req *model.GetListBadgeRequest,
) (*model.GetListBadgeResponse, error) {
	return get[model.GetListBadgeRequest, model.GetListBadgeResponse](ctx, c, "/getBadges", req)
}

func (c *Client) DeleteBadge(
	ctx context.Context, req *model.DeleteBadgeRequest,
) (*model.DeleteBadgeResponse, error) {
	return post[model.DeleteBadgeRequest, model.DeleteBadgeResponse](ctx, c, "/deleteBadge", req)
}

func (c *Client) AwardBadge(
	ctx context.Context, req *model.AwardBadgeRequest,
) (*model.AwardBadgeResponse, error) {
	return post[model.AwardBadgeRequest, model.AwardBadgeResponse](ctx, c, "/awardBadge", req)
}

func (c *Client) GetCharacterBadges(
	ctx context.Context, req *model.GetCharacterBadgesRequest,
) (*model.GetCharacterBadgesResponse, error) {
	return get[model.GetCharacterBadgesRequest, model.GetCharacterBadgesResponse](ctx, c, "/getCharacterBadges", req)
}

func (c *Client) GetCatalog(
	ctx context.Context, req *model.GetCatalogRequest,
) (*model.GetCatalogResponse, error) {
	return get[model.GetCatalogRequest, model.GetCatalogResponse](ctx, c, "/getCatalog", req)
}
