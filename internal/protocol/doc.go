/*
Package protocol defines the chat socket wire format.

Inbound frames are JSON objects discriminated by "type" and decode into a
closed set of Frame values. Consumers implement Handler and call
Frame.Accept, so a new frame type breaks every handler until it is
handled:

	start        {isEdit?}
	status       {content}
	chunk        {content}
	edit_chunk   {id, content}    ("text" is accepted for content)
	id_update    {tempId, realId}
	title_update {title?}
	end          {}

Outbound commands are message {message, attachment, tempId},
edit {messageId, newContent} and regenerate {}.

JSON is handled by github.com/bytedance/sonic.
*/
package protocol
