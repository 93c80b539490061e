package shot

// removeBannersJS strips cookie consent banners and stray dialogs that would
// otherwise land in the screenshot.
const removeBannersJS = `
const banners = document.querySelectorAll("[id*='cookie'], [class*='cookie'], [role*='dialog']");
banners.forEach(el => el.remove());
`

// injectActionButtonsJS recreates the "Add Friend" / "More..." profile action
// buttons a logged-out session does not render, so the page reads as viewed by
// a stranger.
const injectActionButtonsJS = `
const container = document.createElement('div');
container.className = 'profile_header_actions';
container.style.display = 'flex';
container.style.gap = '10px';
container.style.position = 'absolute';
container.style.top = '272px';
container.style.left = '1150px';
container.style.zIndex = '9999';

const btnAddFriend = document.createElement('div');
btnAddFriend.className = 'btn_profile_action btn_medium';
btnAddFriend.style.padding = '3px 15px';
btnAddFriend.style.borderRadius = '2px';
btnAddFriend.style.backgroundColor = 'rgba(0, 0, 0, 0.36)';
btnAddFriend.style.color = 'lightgray';
btnAddFriend.style.display = 'inline-flex';
btnAddFriend.style.alignItems = 'center';
btnAddFriend.style.justifyContent = 'flex-start';
btnAddFriend.style.paddingLeft = '8px';
btnAddFriend.style.height = '23px';
btnAddFriend.style.width = '65px';
btnAddFriend.style.pointerEvents = 'none';
btnAddFriend.style.boxShadow = '0 2px 6px rgba(0, 0, 0, 0.3)';
btnAddFriend.innerText = 'Add Friend';

const btnMore = document.createElement('div');
btnMore.className = 'btn_profile_action btn_medium';
btnMore.style.padding = '3px 15px';
btnMore.style.borderRadius = '2px';
btnMore.style.backgroundColor = 'rgba(0, 0, 0, 0.36)';
btnMore.style.color = 'lightgray';
btnMore.style.display = 'inline-flex';
btnMore.style.alignItems = 'center';
btnMore.style.gap = '5px';
btnMore.style.height = '23px';
btnMore.style.width = '50px';
btnMore.style.pointerEvents = 'none';
btnMore.style.boxShadow = '0 2px 6px rgba(0, 0, 0, 0.3)';

const textSpan = document.createElement('span');
textSpan.innerText = 'More...';
textSpan.style.background = 'transparent';
textSpan.style.border = 'none';
textSpan.style.position = 'relative';
textSpan.style.left = '-15px';

const img = document.createElement('img');
img.src = 'https://community.cloudflare.steamstatic.com/public/images/profile/profile_action_dropdown.png';
img.style.width = '12px';
img.style.height = '12px';
img.style.marginTop = '1px';
img.style.background = 'transparent';
img.style.border = 'none';
img.style.boxShadow = 'none';
img.style.position = 'relative';
img.style.left = '-23px';

btnMore.appendChild(textSpan);
btnMore.appendChild(img);

container.appendChild(btnAddFriend);
container.appendChild(btnMore);
document.body.appendChild(container);
`
