package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/protocol"
)

const (
	wikiSpacePageSize = 50
	wikiNodePageSize  = 50
)

// ListSpaces returns every Wiki space the app can see.
func (c *Client) ListSpaces(ctx context.Context) ([]protocol.WikiSpace, error) {
	var spaces []protocol.WikiSpace
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(wikiSpacePageSize))
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}

		var page protocol.WikiSpaceList
		if err := c.call(ctx, "list spaces", http.MethodGet, "/wiki/v2/spaces", q, nil, &page); err != nil {
			return nil, err
		}
		spaces = append(spaces, page.Items...)
		if !page.HasMore || page.PageToken == "" {
			return spaces, nil
		}
		pageToken = page.PageToken
	}
}

// ListNodes returns the children of parentToken in a space. An empty parent
// lists the space's top-level nodes.
func (c *Client) ListNodes(ctx context.Context, spaceID, parentToken string) ([]protocol.WikiNode, error) {
	var nodes []protocol.WikiNode
	pageToken := ""
	path := "/wiki/v2/spaces/" + url.PathEscape(spaceID) + "/nodes"
	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(wikiNodePageSize))
		if parentToken != "" {
			q.Set("parent_node_token", parentToken)
		}
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}

		var page protocol.WikiNodeList
		if err := c.call(ctx, "list nodes", http.MethodGet, path, q, nil, &page); err != nil {
			return nil, err
		}
		nodes = append(nodes, page.Items...)
		if !page.HasMore || page.PageToken == "" {
			return nodes, nil
		}
		pageToken = page.PageToken
	}
}

// GetNode fetches a single node by token. The response carries the node's
// space and parent, which is what ancestor reconstruction walks.
func (c *Client) GetNode(ctx context.Context, token string) (protocol.WikiNode, error) {
	q := url.Values{}
	q.Set("token", token)
	q.Set("obj_type", models.TypeWiki)

	var data protocol.WikiNodeData
	if err := c.call(ctx, "get node", http.MethodGet, "/wiki/v2/spaces/get_node", q, nil, &data); err != nil {
		return protocol.WikiNode{}, err
	}
	if data.Node.NodeToken == "" {
		return protocol.WikiNode{}, &APIError{Op: "get node", Status: http.StatusOK, Msg: "node " + token + " not found"}
	}
	return data.Node, nil
}

// CreateNode creates a node of objType under parentToken (empty for the space root).
func (c *Client) CreateNode(ctx context.Context, spaceID, title, objType, parentToken string) (protocol.WikiNode, error) {
	var data protocol.WikiNodeData
	err := c.call(ctx, "create node", http.MethodPost, "/wiki/v2/spaces/"+url.PathEscape(spaceID)+"/nodes", nil,
		protocol.CreateWikiNodeRequest{
			ObjType:         objType,
			NodeType:        "origin",
			Title:           title,
			ParentNodeToken: parentToken,
		}, &data)
	if err != nil {
		return protocol.WikiNode{}, err
	}
	return data.Node, nil
}

// MoveNode re-parents a node within its space. An empty target moves it to the space root.
func (c *Client) MoveNode(ctx context.Context, spaceID, token, targetParent string) error {
	return c.call(ctx, "move node", http.MethodPost, "/wiki/v2/spaces/"+url.PathEscape(spaceID)+"/nodes/move", nil,
		protocol.MoveWikiNodeRequest{NodeToken: token, TargetParentToken: targetParent}, nil)
}

// DeleteNode deletes a node.
func (c *Client) DeleteNode(ctx context.Context, spaceID, token string) error {
	path := "/wiki/v2/spaces/" + url.PathEscape(spaceID) + "/nodes/" + url.PathEscape(token)
	return c.call(ctx, "delete node", http.MethodDelete, path, nil, nil, nil)
}

// RawContent returns the plain-text content of a docx document.
func (c *Client) RawContent(ctx context.Context, documentID string) (string, error) {
	var data protocol.RawContentData
	path := "/docx/v1/documents/" + url.PathEscape(documentID) + "/raw_content"
	if err := c.call(ctx, "raw content", http.MethodGet, path, nil, nil, &data); err != nil {
		return "", err
	}
	return data.Content, nil
}

// NodeURL returns the web link for a Wiki node.
func (c *Client) NodeURL(token string) (string, error) {
	host, err := c.webHost()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s/wiki/%s", host, token), nil
}
