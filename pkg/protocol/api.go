// Package protocol defines the Feishu open API request/response types used by the client.
package protocol

import "encoding/json"

// Envelope wraps every open API response: code 0 means success.
type Envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`
}

// TenantTokenRequest is the body for POST /auth/v3/tenant_access_token/internal.
type TenantTokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

// TenantTokenResponse is returned by the token endpoint. Unlike other
// endpoints the token fields sit beside code/msg rather than under data.
type TenantTokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"` // seconds
}

// DriveFile is one entry of GET /drive/v1/files.
type DriveFile struct {
	Token        string `json:"token"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	ParentToken  string `json:"parent_token"`
	URL          string `json:"url,omitempty"`
	ModifiedTime string `json:"modified_time,omitempty"` // unix seconds as string
}

// DriveFileList is the data of GET /drive/v1/files.
type DriveFileList struct {
	Files         []DriveFile `json:"files"`
	HasMore       bool        `json:"has_more"`
	NextPageToken string      `json:"next_page_token"`
}

// CreateFolderRequest is the body for POST /drive/v1/files/create_folder.
type CreateFolderRequest struct {
	Name        string `json:"name"`
	FolderToken string `json:"folder_token"`
}

// CreateFolderData is the data of a create_folder response.
type CreateFolderData struct {
	Token string `json:"token"`
	URL   string `json:"url,omitempty"`
}

// MoveFileRequest is the body for POST /drive/v1/files/{token}/move.
type MoveFileRequest struct {
	Type        string `json:"type"`
	FolderToken string `json:"folder_token"`
}

// RenameFileRequest is the body for PATCH /drive/v1/files/{token}.
type RenameFileRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateSpreadsheetRequest is the body for POST /sheets/v3/spreadsheets.
type CreateSpreadsheetRequest struct {
	Title       string `json:"title"`
	FolderToken string `json:"folder_token,omitempty"`
}

// CreateSpreadsheetData is the data of a create spreadsheet response.
type CreateSpreadsheetData struct {
	Spreadsheet struct {
		Token string `json:"spreadsheet_token"`
		URL   string `json:"url"`
	} `json:"spreadsheet"`
}

// CreateBitableRequest is the body for POST /bitable/v1/apps.
type CreateBitableRequest struct {
	Name        string `json:"name"`
	FolderToken string `json:"folder_token,omitempty"`
}

// CreateBitableData is the data of a create bitable response.
type CreateBitableData struct {
	App struct {
		AppToken       string `json:"app_token"`
		URL            string `json:"url"`
		DefaultTableID string `json:"default_table_id"`
	} `json:"app"`
}

// WikiSpace is one entry of GET /wiki/v2/spaces.
type WikiSpace struct {
	SpaceID     string `json:"space_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// WikiSpaceList is the data of GET /wiki/v2/spaces.
type WikiSpaceList struct {
	Items     []WikiSpace `json:"items"`
	HasMore   bool        `json:"has_more"`
	PageToken string      `json:"page_token"`
}

// WikiNode is a knowledge-base node.
type WikiNode struct {
	SpaceID         string `json:"space_id"`
	NodeToken       string `json:"node_token"`
	ObjToken        string `json:"obj_token"`
	ObjType         string `json:"obj_type"`
	ParentNodeToken string `json:"parent_node_token"`
	NodeType        string `json:"node_type,omitempty"`
	Title           string `json:"title"`
	HasChild        bool   `json:"has_child"`
	ObjEditTime     string `json:"obj_edit_time,omitempty"`
}

// WikiNodeList is the data of GET /wiki/v2/spaces/{space_id}/nodes.
type WikiNodeList struct {
	Items     []WikiNode `json:"items"`
	HasMore   bool       `json:"has_more"`
	PageToken string     `json:"page_token"`
}

// WikiNodeData wraps a single node (get_node, create).
type WikiNodeData struct {
	Node WikiNode `json:"node"`
}

// CreateWikiNodeRequest is the body for POST /wiki/v2/spaces/{space_id}/nodes.
type CreateWikiNodeRequest struct {
	ObjType         string `json:"obj_type"`
	NodeType        string `json:"node_type"`
	Title           string `json:"title"`
	ParentNodeToken string `json:"parent_node_token,omitempty"`
}

// MoveWikiNodeRequest is the body for POST /wiki/v2/spaces/{space_id}/nodes/move.
type MoveWikiNodeRequest struct {
	NodeToken         string `json:"node_token"`
	TargetParentToken string `json:"target_parent_token,omitempty"`
}

// RawContentData is the data of GET /docx/v1/documents/{id}/raw_content.
type RawContentData struct {
	Content string `json:"content"`
}
