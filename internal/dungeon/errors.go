package dungeon

import "errors"

var (
	// ErrNoGoalAttachment is returned when no open door can take the goal
	// room after every generation attempt.
	ErrNoGoalAttachment = errors.New("dungeon: no open door can attach the goal room")

	// ErrMissingDoor is returned when a template lacks the door a placement needs.
	ErrMissingDoor = errors.New("dungeon: template has no matching door")

	// ErrNoFloorTile is returned when a room has no floor tile to place something on.
	ErrNoFloorTile = errors.New("dungeon: no floor tile in room")

	// ErrUnknownRoom is returned for room ids that are not in the registry.
	ErrUnknownRoom = errors.New("dungeon: unknown room")

	// ErrUnknownTemplate is returned when a template name is not in the catalog.
	ErrUnknownTemplate = errors.New("dungeon: unknown template")

	// ErrInvalidTemplate wraps every template parse or validation problem.
	ErrInvalidTemplate = errors.New("dungeon: invalid template")

	// ErrInvalidConfig is returned for generator settings that cannot work.
	ErrInvalidConfig = errors.New("dungeon: invalid generator configuration")
)
